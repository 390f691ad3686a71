package core

import "time"

// Clock tracks elapsed time between frames.
type Clock struct {
	StartTime time.Time
	Elapsed   float64
}

func (c *Clock) Start() {
	c.StartTime = time.Now()
	c.Elapsed = 0
}

func (c *Clock) Update() {
	if !c.StartTime.IsZero() {
		c.Elapsed = time.Since(c.StartTime).Seconds()
	}
}

func (c *Clock) Stop() {
	c.StartTime = time.Time{}
}
