package raymarch

import (
	"context"
	"fmt"
	"sync/atomic"
)

// FrameRenderer draws a prepared frame. The wgpu renderer implements it.
type FrameRenderer interface {
	Draw(frame *RenderFrame, world *RenderWorld) error
}

// RenderSchedule is the render half of a cycle: prepare, then draw.
// It runs inline in the Prepare and Render stages, or on its own goroutine
// through Run.
type RenderSchedule struct {
	Mailbox  *FrameMailbox
	World    *RenderWorld
	Renderer FrameRenderer

	rendererName string
	current      *RenderFrame
	prepared     atomic.Uint64
	logger       Logger
}

func NewRenderSchedule(mailbox *FrameMailbox, world *RenderWorld, logger Logger) *RenderSchedule {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &RenderSchedule{
		Mailbox: mailbox,
		World:   world,
		logger:  logger,
	}
}

// AttachRenderer installs the renderer that draws prepared frames. Only one
// renderer may be attached; attaching the same name again is a no-op.
func (s *RenderSchedule) AttachRenderer(name string, r FrameRenderer) error {
	if s.rendererName != "" {
		if s.rendererName != name {
			return fmt.Errorf("multiple renderers attached: %s and %s", s.rendererName, name)
		}
		return nil
	}
	s.rendererName = name
	s.Renderer = r
	s.logger.Infof("Renderer selected: %s", name)
	return nil
}

// Prepare takes the pending frame, if any, and writes its uniforms.
func (s *RenderSchedule) Prepare() *RenderFrame {
	frame := s.Mailbox.Take()
	if frame == nil {
		return nil
	}
	s.current = frame
	s.World.Prepare(frame)
	s.prepared.Add(1)
	return frame
}

// Draw renders the last prepared frame.
func (s *RenderSchedule) Draw() {
	if s.Renderer == nil || s.current == nil {
		return
	}
	if err := s.Renderer.Draw(s.current, s.World); err != nil {
		s.logger.Errorf("Render cycle %d: %v", s.current.Cycle, err)
	}
}

// Prepared counts the frames prepared so far.
func (s *RenderSchedule) Prepared() uint64 {
	return s.prepared.Load()
}

// Run prepares and draws each published frame until ctx is done.
func (s *RenderSchedule) Run(ctx context.Context) error {
	s.logger.Infof("Render schedule started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("Render schedule stopped after %d frames", s.prepared.Load())
			return ctx.Err()
		case <-s.Mailbox.Ready():
			if s.Prepare() != nil {
				s.Draw()
			}
		}
	}
}
