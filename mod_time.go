package raymarch

import (
	"time"
)

type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

// DeltaSeconds is the frame delta in seconds.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule advances the Time resource at the start of every cycle. A
// non-zero Fixed step replaces the wall clock delta.
type TimeModule struct {
	Fixed time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
	})
	fixed := mod.Fixed
	app.UseSystem(
		System(func(timeResource *Time) {
			timeSystem(timeResource, fixed)
		}).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time, fixed time.Duration) {
	if fixed > 0 {
		timeResource.Dt = fixed
		timeResource.Time = timeResource.Time.Add(fixed)
	} else {
		now := time.Now()
		timeResource.Dt = now.Sub(timeResource.Time)
		timeResource.Time = now
	}
	timeResource.Frame++
}
