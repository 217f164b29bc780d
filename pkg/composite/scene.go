package composite

import (
	"fmt"
	"sort"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// WallThickness is the thickness of the walls scenes are enclosed in.
const WallThickness = 20

// SceneBuilder fills w with a demonstration scene inside width×height.
type SceneBuilder func(w *physics.World, width, height float64) error

var scenes = map[string]SceneBuilder{
	"cars":  buildCars,
	"chain": buildChain,
	"cloth": buildCloth,
	"pile":  buildPile,
}

// Scenes lists the registered scene names in sorted order.
func Scenes() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildScene builds the named scene into w.
func BuildScene(name string, w *physics.World, width, height float64) error {
	build, ok := scenes[name]
	if !ok {
		return fmt.Errorf("unknown scene %q (have %v)", name, Scenes())
	}
	walls, err := Enclose(width, height, WallThickness)
	if err != nil {
		return err
	}
	if err := walls.AddTo(w); err != nil {
		return err
	}
	if err := build(w, width, height); err != nil {
		return fmt.Errorf("scene %s: %w", name, err)
	}
	return nil
}

func buildCars(w *physics.World, width, height float64) error {
	floor := height - WallThickness - 30
	for i, typ := range []CarType{CarFlat, CarCoupe} {
		car, err := Car(width*float64(i+1)/3, floor, CarOptions{Type: typ, Scale: 1.5, Filter: w.NewGroup()})
		if err != nil {
			return err
		}
		car.Bodies[0].SetVelocity(physics.Vec(4, 0))
		if err := car.AddTo(w); err != nil {
			return err
		}
	}
	return nil
}

func buildChain(w *physics.World, width, _ float64) error {
	filter := w.NewGroup()
	linkOpts := physics.DefaultBodyOptions()
	linkOpts.Filters = []physics.Group{filter}
	linkOpts.Label = "link"

	chain, err := Chain(ChainOptions{
		Segments: 10,
		From:     physics.Vec(width*0.25, 100),
		To:       physics.Vec(width*0.75, 100),
		Link: func(at physics.Vector2D) (*physics.Body, error) {
			return physics.NewRectangle(at.X, at.Y, 40, 10, linkOpts)
		},
		AnchorsA: []physics.Vector2D{physics.Vec(20, 0)},
		AnchorsB: []physics.Vector2D{physics.Vec(-20, 0)},
		Joint:    physics.DefaultJointOptions(physics.JointPivot),
	})
	if err != nil {
		return err
	}

	first := chain.Bodies[0]
	pin := first.Position()
	jo := physics.DefaultJointOptions(physics.JointPivot)
	jo.BodyA = first
	jo.PointB = &pin
	jo.Label = "pin"
	anchor, err := physics.NewJoint(jo)
	if err != nil {
		return err
	}
	chain.Joints = append(chain.Joints, anchor)
	return chain.AddTo(w)
}

func buildCloth(w *physics.World, width, _ float64) error {
	opts := DefaultClothOptions(15, 10, w.NewGroup())
	opts.Hanging = true
	cloth, err := Cloth(width/2-float64(opts.Columns-1)*opts.Spacing/2, 60, opts)
	if err != nil {
		return err
	}
	return cloth.AddTo(w)
}

func buildPile(w *physics.World, width, height float64) error {
	const cols, rows = 6, 5
	opts := physics.DefaultBodyOptions()
	opts.Label = "pile"
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := width/2 + float64(col-cols/2)*50
			y := height/3 + float64(row)*50
			var (
				b   *physics.Body
				err error
			)
			switch (row + col) % 3 {
			case 0:
				b, err = physics.NewRectangle(x, y, 40, 30, opts)
			case 1:
				b, err = physics.NewCircle(x, y, 18, opts)
			default:
				b, err = physics.NewPolygon(x, y, 20, 3+col%4, opts)
			}
			if err != nil {
				return err
			}
			if err := w.Add(b); err != nil {
				return err
			}
		}
	}
	return nil
}
