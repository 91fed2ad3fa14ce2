// Package relay forwards a streamed llm completion to a websocket client.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/prognoshealth/pathwayai/config"
	"github.com/prognoshealth/pathwayai/llm"
	"github.com/prognoshealth/pathwayai/push"
)

// ErrInvalidLessonPlan is returned when a lesson plan completion is not a
// json object.
var ErrInvalidLessonPlan = errors.New("lesson plan is not a json object")

const deltaBuffer = 64

// Stats summarises a relayed stream.
type Stats struct {
	Deltas int
	Frames int
	Bytes  int
}

// Relay streams one completion to one connection.
type Relay struct {
	Streamer  llm.Streamer
	Profile   config.Profile
	Coalescer Coalescer
}

// Run streams the completion for message to connectionID. Deltas are produced
// and pushed concurrently; a failed push cancels the provider stream and a
// failed stream stops the pushes. A done frame follows a complete stream.
func (r *Relay) Run(ctx context.Context, pusher push.Pusher, connectionID, message string) (Stats, error) {
	var stats Stats

	g, gctx := errgroup.WithContext(ctx)
	deltas := make(chan string, deltaBuffer)

	g.Go(func() error {
		defer close(deltas)

		return r.Streamer.Stream(gctx, r.Profile, message, func(delta string) error {
			select {
			case deltas <- delta:
				stats.Deltas++
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		return r.Coalescer.Run(gctx, deltas, func(text string) error {
			stats.Frames++
			stats.Bytes += len(text)
			return pusher.Post(gctx, connectionID, push.MessageFrame(text))
		})
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	if err := pusher.Post(ctx, connectionID, push.DoneFrame()); err != nil {
		return stats, err
	}

	return stats, nil
}

// RunLessonPlan collects the json completion for message and pushes it to
// connectionID as a single lesson_plan frame followed by a done frame.
func (r *Relay) RunLessonPlan(ctx context.Context, pusher push.Pusher, connectionID, message string) (Stats, error) {
	var stats Stats
	var buf strings.Builder

	err := r.Streamer.Stream(ctx, r.Profile, message, func(delta string) error {
		stats.Deltas++
		buf.WriteString(delta)
		return nil
	})
	if err != nil {
		return stats, err
	}

	plan, err := lessonPlan(buf.String())
	if err != nil {
		return stats, err
	}

	stats.Frames, stats.Bytes = 1, len(plan)
	if err := pusher.Post(ctx, connectionID, push.Frame{LessonPlan: plan}); err != nil {
		return stats, err
	}

	if err := pusher.Post(ctx, connectionID, push.DoneFrame()); err != nil {
		return stats, err
	}

	return stats, nil
}

// lessonPlan checks that text holds exactly one json object and compacts it.
func lessonPlan(text string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, errors.Wrap(ErrInvalidLessonPlan, err.Error())
	}

	if obj == nil {
		return nil, ErrInvalidLessonPlan
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(text)); err != nil {
		return nil, errors.Wrap(ErrInvalidLessonPlan, err.Error())
	}

	return compact.Bytes(), nil
}
