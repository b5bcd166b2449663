package surface_test

import (
	"fmt"

	"github.com/dredimura/surface"
	"github.com/dredimura/surface/pkg/batch"
	"github.com/dredimura/surface/pkg/domain"
)

// ExampleNew_standalone shows a surface running without a host, as during UI development.
func ExampleNew_standalone() {
	s := surface.New(nil)
	defer s.Close()
	s.Start()

	drive, _ := s.Slider("drive", 0.3)
	fmt.Printf("drive=%.2f connected=%v\n", drive.Value(), drive.Connected())

	drive.SetValue(0.7)
	fmt.Printf("drive=%.2f\n", drive.Value())
	fmt.Println("phase:", s.Snapshot().Phase)

	// Output:
	// drive=0.30 connected=false
	// drive=0.70
	// phase: unconfigured
}

// ExampleSurface_Apply applies a batch without staggering; every write lands before Apply returns.
func ExampleSurface_Apply() {
	s := surface.New(nil)
	defer s.Close()

	tone, _ := s.Slider("tone", 0)
	bypass, _ := s.Toggle("bypass", false)

	_, err := s.Apply([]domain.BatchUpdate{
		{ID: "tone", Value: 0.55},
		{ID: "bypass", Value: 1},
	}, batch.WithStagger(0), batch.WithOnComplete(func() { fmt.Println("complete") }))
	if err != nil {
		panic(err)
	}

	fmt.Printf("tone=%.2f bypass=%v\n", tone.Value(), bypass.Value())

	// Output:
	// complete
	// tone=0.55 bypass=true
}
