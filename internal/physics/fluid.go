package physics

import "github.com/san-kum/inksim/internal/grid"

// StepFluid advances the lattice one tick: BGK collision toward the local
// equilibrium, pull streaming with halfway bounce-back at the four walls,
// then recomputation of rho, ux and uy. It returns the number of cells that
// had to be recovered from NaN/Inf. It does not allocate.
func StepFluid(g *grid.Grid, p Params) int {
	recovered := collide(g, p)
	stream(g)
	return recovered + macroscopic(g)
}

func collide(g *grid.Grid, p Params) int {
	n := g.N
	f := g.F
	omega := p.Omega()
	dry := p.DryRate()
	drag := p.dragCoeff()
	cf, mf, yf := g.Floating[grid.Cyan], g.Floating[grid.Magenta], g.Floating[grid.Yellow]
	bad := 0

	for i := 0; i < n; i++ {
		rho, mx, my := g.Moments(i)
		if !(rho > 0) || !grid.Finite(rho) || !grid.Finite(mx) || !grid.Finite(my) {
			// reset before streaming so the corruption cannot spread
			recoverCell(g, i%g.W, i/g.W)
			bad++
			continue
		}
		ux, uy := mx/rho, my/rho

		// heavier pigment resists flow
		if load := cf[i] + mf[i] + yf[i]; load > 0 {
			k := 1 / (1 + drag*load)
			ux *= k
			uy *= k
		}
		ux, uy = grid.ClampSpeed(ux, uy)

		// evaporation pulls density back toward rest
		scale := (rho - dry*(rho-grid.RhoRef)) / rho

		usq := 1.5 * (ux*ux + uy*uy)
		for d := 0; d < grid.Q; d++ {
			eu := float32(grid.CX[d])*ux + float32(grid.CY[d])*uy
			feq := grid.W[d] * rho * (1 + 3*eu + 4.5*eu*eu - usq)
			j := d*n + i
			f[j] = (f[j] + omega*(feq-f[j])) * scale
		}
	}
	return bad
}

// stream pulls every population from its upwind neighbour. A population whose
// source lies outside the domain is the one that hit the wall from this cell
// and comes back reversed, so no mass leaves the grid.
func stream(g *grid.Grid) {
	w, h, n := g.W, g.H, g.N
	src, dst := g.F, g.FTmp

	copy(dst[:n], src[:n])
	for d := 1; d < grid.Q; d++ {
		cx, cy := grid.CX[d], grid.CY[d]
		opp := grid.Opp[d] * n
		base := d * n
		for y := 0; y < h; y++ {
			sy := y - cy
			row := y * w
			for x := 0; x < w; x++ {
				sx := x - cx
				i := row + x
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					dst[base+i] = src[opp+i]
					continue
				}
				dst[base+i] = src[base+sy*w+sx]
			}
		}
	}
	g.F, g.FTmp = dst, src
}

// badCell marks a cell for recovery inside Rho.
const badCell float32 = -1

func macroscopic(g *grid.Grid) int {
	n := g.N
	bad := 0
	for i := 0; i < n; i++ {
		rho, mx, my := g.Moments(i)
		if !(rho > 0) || !grid.Finite(rho) || !grid.Finite(mx) || !grid.Finite(my) {
			g.Rho[i] = badCell
			bad++
			continue
		}
		ux, uy := grid.ClampSpeed(mx/rho, my/rho)
		if rho < grid.RhoMin || rho > grid.RhoMax {
			rescale(g, i, clamp(rho, grid.RhoMin, grid.RhoMax)/rho)
			rho = clamp(rho, grid.RhoMin, grid.RhoMax)
		}
		g.Rho[i], g.Ux[i], g.Uy[i] = rho, ux, uy
	}
	if bad == 0 {
		return 0
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if i := g.Idx(x, y); g.Rho[i] == badCell {
				recoverCell(g, x, y)
			}
		}
	}
	return bad
}

func rescale(g *grid.Grid, i int, k float32) {
	for d := 0; d < grid.Q; d++ {
		g.F[d*g.N+i] *= k
	}
}

// recoverCell replaces a corrupt cell with the average state of its healthy
// 8-neighbourhood, or the rest state when it has none.
func recoverCell(g *grid.Grid, x, y int) {
	var rho, ux, uy float32
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 || !g.Contains(x+dx, y+dy) {
				continue
			}
			j := g.Idx(x+dx, y+dy)
			if !(g.Rho[j] > 0) || !grid.Finite(g.Ux[j]) || !grid.Finite(g.Uy[j]) {
				continue
			}
			rho += g.Rho[j]
			ux += g.Ux[j]
			uy += g.Uy[j]
			count++
		}
	}
	if count == 0 {
		rho, ux, uy = grid.RhoRef, 0, 0
	} else {
		k := 1 / float32(count)
		rho, ux, uy = rho*k, ux*k, uy*k
	}
	ux, uy = grid.ClampSpeed(ux, uy)
	g.SetEquilibrium(g.Idx(x, y), rho, ux, uy)
}
