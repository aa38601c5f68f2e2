//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/soundscape"
)

var (
	engine *soundscape.Engine
	funcs  []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("create", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		e, err := soundscape.New(soundscape.WithProcessorOptions(core.WithSampleRate(sr)))
		if err != nil {
			return err.Error()
		}
		engine = e
		return js.Null()
	}))

	api.Set("initialize", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		engine.Initialize()
		return js.Null()
	}))

	api.Set("playData", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		d, err := datumFromJS(args[0])
		if err != nil {
			return err.Error()
		}
		engine.PlayData(d)
		return js.Null()
	}))

	api.Set("stopAll", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		engine.StopAll()
		return js.Null()
	}))

	api.Set("setVolume", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.SetVolume(args[0].Float())
		return js.Null()
	}))

	api.Set("setFilterFrequency", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.SetFilterFrequency(args[0].Float())
		return js.Null()
	}))

	api.Set("setDissonance", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.SetDissonance(args[0].Float())
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		buf := make([]float32, n)
		engine.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("spectrum", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := 0; i < input.Length(); i++ {
			freqs[i] = input.Index(i).Float()
		}
		resp := engine.SpectrumDB(freqs)
		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}
		return arr
	}))

	api.Set("session", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		s := engine.Session()
		p := engine.Parameters()
		obj := js.Global().Get("Object").New()
		obj.Set("initialized", s.Initialized)
		obj.Set("active", s.Active)
		obj.Set("record", s.Datum.ID)
		obj.Set("voices", len(s.Voices))
		obj.Set("collisionIntervalMs", float64(s.CollisionInterval.Microseconds())/1000)
		obj.Set("volume", p.Volume)
		obj.Set("cutoffHz", soundscape.FilterCutoff(p.FilterOpenness))
		obj.Set("dissonance", p.Dissonance)
		return obj
	}))

	js.Global().Set("DebrisSoundscape", api)
	select {}
}

// datumFromJS reads {id, name, density, severity, latitude, longitude}.
func datumFromJS(v js.Value) (debris.Datum, error) {
	sev, err := debris.ParseSeverity(v.Get("severity").String())
	if err != nil {
		return debris.Datum{}, err
	}
	d := debris.Datum{
		Density:  v.Get("density").Float(),
		Severity: sev,
		Latitude: v.Get("latitude").Float(),
	}
	if id := v.Get("id"); id.Type() == js.TypeString {
		d.ID = id.String()
	}
	if name := v.Get("name"); name.Type() == js.TypeString {
		d.Name = name.String()
	}
	if lng := v.Get("longitude"); lng.Type() == js.TypeNumber {
		d.Longitude = lng.Float()
	}
	return d, nil
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
