package particle_test

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/partsim/internal/particle"
)

func newPool(capacity, maxAlive, budget, minLife, maxLife int, seed uint64) *particle.Pool {
	cfg := particle.DefaultConfig()
	cfg.Capacity = capacity
	cfg.MaxAlive = maxAlive
	cfg.SpawnBudget = budget
	cfg.MinLife = minLife
	cfg.MaxLife = maxLife
	cfg.Position = mgl32.Vec4{0, 0.5, 0, 1}
	p, err := particle.New(cfg, particle.NewRand(seed), &particle.ManualClock{})
	Expect(err).NotTo(HaveOccurred())
	return p
}

func aliveSet(p *particle.Pool) map[int]bool {
	set := map[int]bool{}
	for i, s := range p.Slots() {
		if s.State == particle.Alive {
			set[i] = true
		}
	}
	return set
}

var _ = Describe("Pool", func() {
	Context("when every particle lives exactly one tick", func() {
		var pool *particle.Pool

		BeforeEach(func() {
			pool = newPool(10, 3, 10, 1, 1, 4)
		})

		It("caps the first birth batch at max alive", func() {
			stats := pool.Step(0.01)
			Expect(pool.AliveCount()).To(Equal(stats.Births))
			Expect(pool.AliveCount()).To(BeNumerically("<=", 3))
		})

		It("retires the whole previous batch on the next update", func() {
			var prev map[int]bool
			for tick := 0; tick < 50; tick++ {
				stats := pool.Step(0.01)
				Expect(stats.Deaths).To(Equal(len(prev)))
				now := aliveSet(pool)
				for i := range now {
					Expect(prev).NotTo(HaveKey(i))
				}
				Expect(len(now)).To(Equal(stats.Births))
				Expect(len(now)).To(BeNumerically("<=", 3))
				prev = now
			}
		})
	})

	Context("with max alive of zero", func() {
		It("never births and renders nothing", func() {
			pool := newPool(10, 0, 10, 5, 5, 1)
			for tick := 0; tick < 100; tick++ {
				pool.Step(0.016)
				Expect(pool.RenderBuffer()).To(BeEmpty())
			}
		})
	})

	Context("with an unclamped huge timestep", func() {
		It("kills every particle that was alive on the same tick", func() {
			pool := newPool(40, 40, 20, 500, 10, 9)
			for pool.AliveCount() == 0 {
				pool.Step(0.01)
			}
			before := aliveSet(pool)

			stats := pool.Step(1000)
			Expect(stats.Deaths).To(Equal(len(before)))
			for i := range before {
				Expect(pool.Slot(i).State).To(Equal(particle.Dead))
			}
		})
	})

	Context("with a fixed seed and timestep", func() {
		It("reproduces the render buffer of every tick", func() {
			a := newPool(100, 20, 5, 30, 90, 1234)
			b := newPool(100, 20, 5, 30, 90, 1234)
			for tick := 0; tick < 1000; tick++ {
				a.Step(1.0 / 60)
				b.Step(1.0 / 60)
				Expect(a.RenderBuffer()).To(Equal(b.RenderBuffer()), "tick %d", tick)
			}
		})
	})

	DescribeTable("rejects invalid configuration",
		func(mod func(*particle.Config)) {
			cfg := particle.DefaultConfig()
			mod(&cfg)
			_, err := particle.New(cfg, nil, nil)
			Expect(err).To(MatchError(particle.ErrConfig))
		},
		Entry("zero capacity", func(c *particle.Config) { c.Capacity = 0 }),
		Entry("max alive above capacity", func(c *particle.Config) { c.MaxAlive = c.Capacity * 2 }),
		Entry("empty life range", func(c *particle.Config) { c.MaxLife = 0 }),
	)
})
