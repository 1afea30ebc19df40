package menu

import (
	"context"
	"sync"
	"time"
)

// DefaultSlideInterval matches the guest pages' auto-advance timer.
const DefaultSlideInterval = 4 * time.Second

// Carousel tracks the current slide of the offers slider and auto-advances it
// on a fixed interval. With zero or one slide the timer never starts. A manual
// Jump resets the interval so the next auto-advance happens a full interval
// after user interaction.
type Carousel struct {
	mu       sync.Mutex
	count    int
	current  int
	interval time.Duration
	reset    chan struct{}
	stop     chan struct{}
	running  bool
}

func NewCarousel(count int, interval time.Duration) *Carousel {
	if interval <= 0 {
		interval = DefaultSlideInterval
	}
	return &Carousel{
		count:    count,
		interval: interval,
		reset:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Current returns the index of the shown slide.
func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves to the next slide, wrapping to the first after the last.
func (c *Carousel) Advance() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count > 0 {
		c.current = (c.current + 1) % c.count
	}
	return c.current
}

// Jump sets the slide directly (manual navigation) and postpones the next
// auto-advance by a full interval.
func (c *Carousel) Jump(index int) {
	c.mu.Lock()
	if index >= 0 && index < c.count {
		c.current = index
	}
	c.mu.Unlock()

	select {
	case c.reset <- struct{}{}:
	default:
	}
}

// Start runs the auto-advance loop until the context ends or Stop is called.
// It is a no-op with fewer than two slides.
func (c *Carousel) Start(ctx context.Context) {
	c.mu.Lock()
	if c.count <= 1 || c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go func() {
		timer := time.NewTimer(c.interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-c.reset:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(c.interval)
			case <-timer.C:
				c.Advance()
				timer.Reset(c.interval)
			}
		}
	}()
}

// Stop ends the auto-advance loop.
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.running = false
		close(c.stop)
	}
}

// NearestIndex implements the scroll resync heuristic: given the viewport
// center and each slide's center position, it returns the index of the slide
// closest to the viewport center.
func NearestIndex(center float64, slideCenters []float64) int {
	best := 0
	bestDist := -1.0
	for i, sc := range slideCenters {
		dist := sc - center
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}
