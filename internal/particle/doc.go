// Package particle provides a fixed-capacity particle pool for emitter
// simulations.
//
// A [Pool] owns a fixed number of slots allocated once by [New]. Each call
// to [Pool.Update] (clock driven) or [Pool.Step] (explicit timestep):
//
//   - integrates and ages every slot that was alive when the call began
//   - recycles slots whose life ran out or that fell below the ground plane
//   - births new particles into slots that were already dead, up to the
//     configured alive ceiling
//
// [Pool.RenderBuffer] packs the alive slots as interleaved position and
// colour floats, 8 per particle, ready for upload by a renderer.
//
// # Example
//
//	cfg := particle.DefaultConfig()
//	pool, err := particle.New(cfg, particle.NewRand(42), nil)
//	if err != nil {
//		return err
//	}
//	for range 100 {
//		pool.Step(1.0 / 60)
//	}
//	buf := pool.RenderBuffer()
//
// # Thread Safety
//
// Pool instances are NOT thread-safe. The random source and clock are owned
// by the pool and must not be shared with other goroutines.
package particle
