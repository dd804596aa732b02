package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fyneApp "fyne.io/fyne/v2/app"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/layercanvas"
	fyneHost "github.com/tdewolff/layercanvas/hosts/fyne"
	"github.com/tdewolff/layercanvas/rasterizer"
	"github.com/tdewolff/layercanvas/svg"
)

type Render struct {
	Width  int    `desc:"Image width in pixels, overrides the scene"`
	Height int    `desc:"Image height in pixels, overrides the scene"`
	Click  string `desc:"Click at pixel position x,y before rendering"`
	Drag   string `desc:"Drag between pixel positions x0,y0,x1,y1 before rendering"`
	Shift  bool   `desc:"Hold shift while clicking or dragging"`
	Output string `short:"o" default:"layerdemo.png" desc:"Output file (png, jpg, gif, tif, bmp or svg)"`
	Scene  string `index:"0" desc:"Scene file (TOML)"`
}

type Show struct {
	Scene string `index:"0" desc:"Scene file (TOML)"`
}

func main() {
	root := argp.NewCmd(&Render{}, "Layered electrode map renderer")
	root.AddCmd(&Show{}, "show", "Show the electrode map in a window")
	root.Parse()
	root.PrintHelp()
}

// demo is the layer stack of the electrode map.
type demo struct {
	scene      *Scene
	comp       *layercanvas.Compositor
	axes       *layercanvas.Layer[sceneProps, struct{}]
	electrodes *layercanvas.Layer[sceneProps, selection]
	labels     *layercanvas.Layer[sceneProps, struct{}]
}

func newDemo(s *Scene, comp *layercanvas.Compositor, onSelect func([]int)) *demo {
	d := &demo{
		scene:      s,
		comp:       comp,
		axes:       newAxesLayer(s),
		electrodes: newElectrodeLayer(s, onSelect),
		labels:     newLabelLayer(s),
	}
	comp.Add(d.axes)
	comp.Add(d.electrodes)
	comp.Add(d.labels)
	return d
}

// resize pushes props of the given size to all layers.
func (d *demo) resize(width, height int) {
	props := sceneProps{width, height, d.scene}
	d.axes.SetProps(props)
	d.electrodes.SetProps(props)
	d.labels.SetProps(props)
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers: %s", n, s)
	}
	fs := make([]float64, n)
	for i, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		fs[i] = f
	}
	return fs, nil
}

// script replays a click and a drag in pixel coordinates.
func (cmd *Render) script(comp *layercanvas.Compositor) error {
	var mods layercanvas.Modifiers
	if cmd.Shift {
		mods = layercanvas.ModShift
	}
	press := func(typ layercanvas.MouseEventType, x, y float64) {
		buttons := layercanvas.ButtonPrimary
		if typ == layercanvas.MouseRelease {
			buttons = 0
		}
		comp.Mouse(layercanvas.MouseEvent{Type: typ, Point: layercanvas.Point{x, y}, Buttons: buttons, Modifiers: mods})
	}
	if cmd.Click != "" {
		fs, err := parseFloats(cmd.Click, 2)
		if err != nil {
			return fmt.Errorf("click: %w", err)
		}
		press(layercanvas.MousePress, fs[0], fs[1])
		press(layercanvas.MouseRelease, fs[0], fs[1])
	}
	if cmd.Drag != "" {
		fs, err := parseFloats(cmd.Drag, 4)
		if err != nil {
			return fmt.Errorf("drag: %w", err)
		}
		press(layercanvas.MousePress, fs[0], fs[1])
		press(layercanvas.MouseMove, (fs[0]+fs[2])/2.0, (fs[1]+fs[3])/2.0)
		press(layercanvas.MouseMove, fs[2], fs[3])
		press(layercanvas.MouseRelease, fs[2], fs[3])
	}
	return nil
}

func (cmd *Render) Run() error {
	s, err := LoadScene(cmd.Scene)
	if err != nil {
		return err
	}
	if cmd.Width != 0 {
		s.Width = cmd.Width
	}
	if cmd.Height != 0 {
		s.Height = cmd.Height
	}

	var surface layercanvas.Surface
	var write func(*os.File) error
	if strings.ToLower(filepath.Ext(cmd.Output)) == ".svg" {
		svgSurface := svg.New(s.Width, s.Height)
		surface = svgSurface
		write = func(f *os.File) error {
			return svg.Writer(f, svgSurface)
		}
	} else {
		writer, err := rasterizer.WriterForFile(cmd.Output)
		if err != nil {
			return err
		}
		rasSurface := rasterizer.New(s.Width, s.Height)
		surface = rasSurface
		write = func(f *os.File) error {
			return rasSurface.Write(f, writer)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := layercanvas.NewEventLoop()
	go loop.Run(ctx)

	var selected []int
	loop.Do(func() {
		comp := layercanvas.NewCompositor(surface, loop, s.Options)
		d := newDemo(s, comp, func(ids []int) {
			selected = ids
		})
		d.resize(s.Width, s.Height)
		if err = cmd.script(comp); err != nil {
			return
		}
		err = comp.RepaintImmediate(ctx)
		comp.Close()
	})
	if err != nil {
		return err
	}
	if 0 < len(selected) {
		fmt.Println("Selected:", selected)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (cmd *Show) Run() error {
	s, err := LoadScene(cmd.Scene)
	if err != nil {
		return err
	}

	a := fyneApp.New()
	w := a.NewWindow("Electrode map")
	view := fyneHost.New(s.Options)
	d := newDemo(s, view.Compositor(), func(ids []int) {
		layercanvas.Logger().Info("selection", "electrodes", ids)
	})
	view.OnResize = d.resize
	w.SetContent(view)
	w.Resize(fyne.NewSize(float32(s.Width), float32(s.Height)))
	w.ShowAndRun()
	return nil
}
