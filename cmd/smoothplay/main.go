package main

import (
	"context"
	"fmt"
	"image"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/smoothmotion"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/framesource"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/telemetry"
)

// syntheticStream is a decoder stand-in: it "decodes" a moving gradient
// at a fixed source frame rate.
type syntheticStream struct {
	width       int
	height      int
	framePeriod time.Duration
}

func (s *syntheticStream) String() string {
	return fmt.Sprintf("SyntheticStream(%dx%d)", s.width, s.height)
}

func (s *syntheticStream) ItemID() uint64 {
	return 1
}

func (s *syntheticStream) CurrentPosition() time.Duration {
	return 0
}

func (s *syntheticStream) DecodedFrame(
	ctx context.Context,
	at time.Duration,
) *frame.Buffer {
	pts := at.Truncate(s.framePeriod)
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	shift := int(pts / s.framePeriod * 3)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off+0] = uint8((x + shift) * 255 / s.width)
			img.Pix[off+1] = uint8(y * 255 / s.height)
			img.Pix[off+2] = uint8((x + y + shift) * 255 / (s.width + s.height))
			img.Pix[off+3] = 0xff
		}
	}
	return &frame.Buffer{Image: img, PTS: pts}
}

// nullSurface swallows presented frames; it exists so the whole pipeline
// can be exercised without a windowing system.
type nullSurface struct {
	bounds image.Rectangle
}

func (s *nullSurface) String() string {
	return fmt.Sprintf("NullSurface(%dx%d)", s.bounds.Dx(), s.bounds.Dy())
}

func (s *nullSurface) Bounds() image.Rectangle {
	return s.bounds
}

func (s *nullSurface) Present(ctx context.Context, img *image.RGBA) error {
	if img.Bounds() != s.bounds {
		return fmt.Errorf("the image extent %v does not match the surface extent %v", img.Bounds(), s.bounds)
	}
	return nil
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	preset := interpolation.PresetBalanced
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.Var(&preset, "preset", "interpolation preset: balanced, quality or performance")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	width := pflag.Int("width", 1280, "synthetic source width")
	height := pflag.Int("height", 720, "synthetic source height")
	sourceFPS := pflag.Float64("source-fps", 24, "synthetic source frame rate")
	tickHz := pflag.Float64("tick-hz", 60, "display refresh rate to simulate")
	duration := pflag.Duration("duration", 10*time.Second, "how long to run")
	pflag.Parse()
	if pflag.NArg() != 0 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) {
			l.Error(http.ListenAndServe(*netPprofAddr, nil))
		})
	}

	sink := telemetry.SinkFunc(func(ctx context.Context, s telemetry.Snapshot) {
		fallback := "-"
		if s.FallbackReason.IsSet() {
			fallback = s.FallbackReason.Get()
		}
		fmt.Printf(
			"method:%-15s fallback:%-25s src:%5.1ffps gen:%5.1ffps eff:%5.1ffps interp:%-10v rendered:%s interpolated:%s dropped:%s\n",
			s.Method, fallback,
			s.SourceFPS, s.GeneratedFPS, s.EffectiveFPS,
			s.InterpolationTime,
			humanize.Comma(int64(s.RenderedFrames)),
			humanize.Comma(int64(s.InterpolatedFrames)),
			humanize.Comma(int64(s.DroppedFrames)),
		)
	})

	cfg := preset.Config()
	l.Debugf("the effective config: %s", spew.Sdump(cfg))

	p, err := smoothmotion.New(
		ctx,
		cfg,
		smoothmotion.OptionTelemetrySink(sink),
	)
	if err != nil {
		l.Fatal(err)
	}
	defer p.Close(ctx)

	stream := &syntheticStream{
		width:       *width,
		height:      *height,
		framePeriod: time.Duration(float64(time.Second) / *sourceFPS),
	}
	source := framesource.New(stream)
	defer source.Close(ctx)
	surface := &nullSurface{bounds: image.Rect(0, 0, *width, *height)}

	if err := p.Attach(ctx, source, surface); err != nil {
		l.Fatal(err)
	}

	tickPeriod := time.Duration(float64(time.Second) / *tickHz)
	t := time.NewTicker(tickPeriod)
	defer t.Stop()
	deadline := time.After(*duration)
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			stats := p.GetStatistics()
			fmt.Printf(
				"done: rendered:%s interpolated:%s fallback:%s dropped:%s\n",
				humanize.Comma(int64(stats.RenderedFrames)),
				humanize.Comma(int64(stats.InterpolatedFrames)),
				humanize.Comma(int64(stats.FallbackFrames)),
				humanize.Comma(int64(stats.DroppedFrames)),
			)
			return
		case now := <-t.C:
			if err := p.RenderTick(ctx, now.Sub(start)); err != nil {
				l.Fatal(err)
			}
		}
	}
}

var (
	_ framesource.DecodedStream   = (*syntheticStream)(nil)
	_ smoothmotion.DisplaySurface = (*nullSurface)(nil)
)
