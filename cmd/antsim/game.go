package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

var (
	colorNest     = color.RGBA{R: 0, G: 220, B: 0, A: 255}
	colorFood     = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	colorWall     = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	colorDepleted = color.RGBA{R: 140, G: 140, B: 140, A: 255}
	colorAnt      = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	colorBestPath = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Game drives one simulation once per frame and draws the pheromone
// heat-map, the cells, the ants and the best recorded tours.
type Game struct {
	sim  *colony.Simulation
	tile int

	// heat is a grid-sized offscreen image scaled up at draw time, the
	// cheap way to blit one pixel per tile.
	heat    *ebiten.Image
	heatPix []byte

	paused bool
}

// NewGame wraps sim for rendering with tile pixels per grid cell.
func NewGame(sim *colony.Simulation, tile int) *Game {
	return &Game{
		sim:     sim,
		tile:    tile,
		heat:    ebiten.NewImage(sim.Width(), sim.Height()),
		heatPix: make([]byte, sim.Width()*sim.Height()*4),
	}
}

// Update advances the simulation one tick per frame. Space pauses, N steps
// a single tick while paused, Escape quits.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			g.sim.Tick()
		}
		return nil
	}
	g.sim.Tick()
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.drawHeatmap(screen)
	g.drawCells(screen)
	g.drawAnts(screen)
	g.drawBestPaths(screen)

	m := g.sim.Metrics()
	collected := g.sim.TotalFood() - g.sim.RemainingFood()
	status := fmt.Sprintf("Food collected: %d/%d  tick %d", collected, g.sim.TotalFood(), m.Tick)
	if g.paused {
		status += "  [paused]"
	}
	ebitenutil.DebugPrint(screen, status)
}

// Layout fixes the window to the grid size in pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.sim.Width() * g.tile, g.sim.Height() * g.tile
}

func (g *Game) drawHeatmap(screen *ebiten.Image) {
	values := g.sim.PheromoneValues()
	for i, tau := range values {
		norm := tau
		if norm > 1 {
			norm = 1
		}
		if norm < 0 {
			norm = 0
		}
		g.heatPix[i*4+0] = 30
		g.heatPix[i*4+1] = 30 + byte(150*norm)
		g.heatPix[i*4+2] = 30 + byte(225*norm)
		g.heatPix[i*4+3] = 255
	}
	g.heat.WritePixels(g.heatPix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.tile), float64(g.tile))
	screen.DrawImage(g.heat, op)
}

func (g *Game) drawCells(screen *ebiten.Image) {
	tile := float32(g.tile)
	for y := 0; y < g.sim.Height(); y++ {
		for x := 0; x < g.sim.Width(); x++ {
			var clr color.RGBA
			switch g.sim.CellAt(colony.Position{X: x, Y: y}) {
			case colony.CellNest:
				clr = colorNest
			case colony.CellFood:
				clr = colorFood
			case colony.CellWall:
				clr = colorWall
			case colony.CellDepleted:
				clr = colorDepleted
			default:
				continue
			}
			vector.DrawFilledRect(screen, float32(x)*tile, float32(y)*tile, tile, tile, clr, false)
		}
	}
}

func (g *Game) drawAnts(screen *ebiten.Image) {
	tile := float32(g.tile)
	for _, ant := range g.sim.Ants() {
		cx := float32(ant.Pos.X)*tile + tile/2
		cy := float32(ant.Pos.Y)*tile + tile/2
		vector.DrawFilledCircle(screen, cx, cy, tile/2, colorAnt, false)
	}
}

func (g *Game) drawBestPaths(screen *ebiten.Image) {
	tile := float32(g.tile)
	for _, path := range g.sim.BestPaths() {
		for i := 1; i < len(path); i++ {
			x0 := float32(path[i-1].X)*tile + tile/2
			y0 := float32(path[i-1].Y)*tile + tile/2
			x1 := float32(path[i].X)*tile + tile/2
			y1 := float32(path[i].Y)*tile + tile/2
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, colorBestPath, false)
		}
	}
}
