package physics

import "github.com/chewxy/math32"

// hash2 maps a lattice point and seed to [0, 1).
func hash2(ix, iy int32, seed uint64) float32 {
	h := uint64(uint32(ix))*0x9E3779B97F4A7C15 ^ uint64(uint32(iy))*0xC2B2AE3D27D4EB4F ^ seed
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return float32(h>>40) / float32(1<<24)
}

func smoothstep(t float32) float32 { return t * t * (3 - 2*t) }

// valueNoise2D is bilinearly smoothed lattice noise in [0, 1).
func valueNoise2D(x, y float32, seed uint64) float32 {
	fx0, fy0 := math32.Floor(x), math32.Floor(y)
	ix, iy := int32(fx0), int32(fy0)
	tx, ty := smoothstep(x-fx0), smoothstep(y-fy0)

	a := hash2(ix, iy, seed)
	b := hash2(ix+1, iy, seed)
	c := hash2(ix, iy+1, seed)
	d := hash2(ix+1, iy+1, seed)

	ab := a + (b-a)*tx
	cd := c + (d-c)*tx
	return ab + (cd-ab)*ty
}

// fbm sums octaves of value noise, normalized back to [0, 1).
func fbm(x, y float32, octaves int, seed uint64) float32 {
	var sum, norm float32
	amp := float32(0.5)
	for o := 0; o < octaves; o++ {
		sum += amp * valueNoise2D(x, y, seed+uint64(o)*0x632BE59BD9B4E019)
		norm += amp
		x, y = x*2.03, y*2.03
		amp *= 0.5
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// splitmix is a tiny allocation-free PRNG for brush scatter.
type splitmix uint64

func (s *splitmix) next() uint64 {
	*s += 0x9E3779B97F4A7C15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// float returns a value in [0, 1).
func (s *splitmix) float() float32 {
	return float32(s.next()>>40) / float32(1<<24)
}
