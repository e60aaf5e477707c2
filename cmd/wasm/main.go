//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"strings"
	"sync"
	"syscall/js"

	"github.com/himanishpuri/BatLog/pkg/batlog/reference"
	"github.com/himanishpuri/BatLog/pkg/batlog/spectral"
	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/himanishpuri/BatLog/pkg/batlog/tagmatch"
	"github.com/himanishpuri/BatLog/pkg/models"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidReference
	ErrorNoReference
	ErrorProcessing
)

var (
	mu      sync.RWMutex
	matcher *tagmatch.Matcher
)

// loadReference replaces the species list from reference YAML text.
// Returns: {error: number, data: number | string}
func loadReference(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: referenceYAML")
	}

	species, err := reference.Load(strings.NewReader(args[0].String()))
	if err != nil {
		return makeErrorResponse(ErrorInvalidReference, err.Error())
	}
	for i := range species {
		species[i].ID = uint(i + 1)
	}

	mu.Lock()
	matcher = tagmatch.New(models.Snapshot(species))
	mu.Unlock()

	return makeResponse(len(species))
}

func currentMatcher() *tagmatch.Matcher {
	mu.RLock()
	defer mu.RUnlock()
	return matcher
}

// matchTags finds the species named in a comment.
// Returns: {error: number, data: [{tag, offset, name, binomial}] | string}
func matchTags(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 1 argument: comment")
	}
	m := currentMatcher()
	if m == nil {
		return makeErrorResponse(ErrorNoReference, "Call loadReference first")
	}

	out := js.Global().Get("Array").New()
	for i, match := range m.FindTags(args[0].String()) {
		obj := js.Global().Get("Object").New()
		obj.Set("tag", match.Tag)
		obj.Set("offset", match.Offset)
		obj.Set("name", match.Species.DisplayName())
		obj.Set("binomial", match.Species.Binomial())
		out.SetIndex(i, obj)
	}
	return makeResponse(out)
}

// summarizeText summarizes one label file's text.
// Returns: {error: number, data: {mode, lines: [string]} | string}
func summarizeText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: fileName, text")
	}
	m := currentMatcher()
	if m == nil {
		return makeErrorResponse(ErrorNoReference, "Call loadReference first")
	}

	name := args[0].String()
	text := strings.ReplaceAll(args[1].String(), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	report := summary.New(m).SummarizeLines(name, lines, summary.Meta{Path: name})

	linesJS := js.Global().Get("Array").New()
	for i, l := range report.Report() {
		linesJS.SetIndex(i, l)
	}
	obj := js.Global().Get("Object").New()
	obj.Set("mode", report.Mode.String())
	obj.Set("lines", linesJS)
	return makeResponse(obj)
}

// peakFrequency returns the dominant frequency of mono samples above minHz.
// Returns: {error: number, data: number | string}
func peakFrequency(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: samples, sampleRate, minHz")
	}
	if args[0].Type() != js.TypeObject || args[1].Type() != js.TypeNumber || args[2].Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "samples must be an array; sampleRate and minHz numbers")
	}

	rate := args[1].Int()
	if rate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", rate))
	}

	n := args[0].Length()
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := args[0].Index(i)
		if v.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("samples element %d is not a number", i))
		}
		samples[i] = v.Float()
	}

	hz, err := spectral.PeakFrequency(samples, rate, args[2].Float())
	if err != nil {
		return makeErrorResponse(ErrorProcessing, err.Error())
	}
	return makeResponse(hz)
}

func makeResponse(data any) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	log := func(method, msg string) {
		if !console.IsUndefined() {
			console.Call(method, msg)
		}
	}
	log("log", "🔧 BatLog WASM module initializing...")

	done := make(chan struct{})

	js.Global().Set("loadReference", js.FuncOf(loadReference))
	js.Global().Set("matchTags", js.FuncOf(matchTags))
	js.Global().Set("summarizeText", js.FuncOf(summarizeText))
	js.Global().Set("peakFrequency", js.FuncOf(peakFrequency))

	window := js.Global().Get("window")
	if window.IsUndefined() {
		log("error", "❌ window object is undefined!")
	} else {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
	}

	log("log", "✅ BatLog WASM module loaded and ready")
	<-done
}
