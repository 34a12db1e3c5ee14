// Command resample-wav resamples WAV audio files to a target sample rate.
//
// Usage:
//
//	resample-wav -rate 48000 input.wav output.wav
//	resample-wav -rate 16000 -quality quick input.wav output.wav
//	resample-wav -rate 48000 -threads 4 surround.wav out.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aatturi/soxstream"
)

const (
	// Frames fed to the converter per chunk. Larger chunks reduce call
	// overhead; the converter bounds its own intake internally.
	chunkFrames = 16384

	wavFormatPCM = 1

	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Float64("rate", soxstream.RateDAT, "Target sample rate in Hz (e.g. 16000, 44100, 48000)")
	quality := flag.String("quality", "high", "Quality preset: quick, low, medium, high, veryhigh")
	threads := flag.Uint("threads", 1, "Worker goroutines for multichannel files (0 = one per CPU)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	q, err := qualityByName(*quality)
	if err != nil {
		return err
	}
	rt := soxstream.NewRuntimeSpec(uint32(*threads))

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s: not a valid WAV file", args[0])
	}
	dec.ReadInfo()

	channels := int(dec.NumChans)
	inRate := float64(dec.SampleRate)
	bits := int(dec.BitDepth)

	if *verbose {
		log.Printf("input: %d Hz, %d channels, %d-bit", dec.SampleRate, channels, bits)
		log.Printf("output: %.0f Hz", *rate)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, int(*rate), bits, channels, wavFormatPCM)

	start := time.Now()
	inFrames, outFrames, err := convert(dec, enc, inRate, *rate, channels, bits, q, rt)
	if err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	if *verbose {
		log.Printf("converted %d frames to %d frames in %v", inFrames, outFrames, time.Since(start))
	}
	return nil
}

// convert streams the decoder through a session into the encoder,
// returning the total frames read and written.
func convert(dec *wav.Decoder, enc *wav.Encoder, inRate, outRate float64, channels, bits int, q soxstream.QualitySpec, rt soxstream.RuntimeSpec) (inFrames, outFrames int, err error) {
	sess, err := soxstream.NewWithParams(inRate, outRate, soxstream.Interleaved[int32](channels), q, rt)
	if err != nil {
		return 0, 0, fmt.Errorf("create converter: %w", err)
	}
	defer sess.Close()

	readBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: int(inRate)},
		Data:           make([]int, chunkFrames*channels),
		SourceBitDepth: bits,
	}
	inChunk := make([]int32, chunkFrames*channels)
	outChunk := make([]int32, outputChunkLen(chunkFrames, inRate, outRate)*channels)
	writeBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: int(outRate)},
		Data:           make([]int, len(outChunk)),
		SourceBitDepth: bits,
	}

	flush := func(produced int) error {
		if produced == 0 {
			return nil
		}
		narrowSamples(outChunk[:produced*channels], writeBuf.Data, bits)
		writeBuf.Data = writeBuf.Data[:produced*channels]
		err := enc.Write(writeBuf)
		writeBuf.Data = writeBuf.Data[:cap(writeBuf.Data)]
		return err
	}

	for {
		n, err := dec.PCMBuffer(readBuf)
		if err != nil {
			return inFrames, outFrames, fmt.Errorf("read input: %w", err)
		}
		if n == 0 {
			break
		}
		frames := n / channels
		widenSamples(readBuf.Data[:n], inChunk, bits)

		fed := 0
		for fed < frames {
			res, err := sess.Process(
				soxstream.NewFrames(inChunk[fed*channels:frames*channels], channels),
				soxstream.NewFrames(outChunk, channels))
			if err != nil {
				return inFrames, outFrames, fmt.Errorf("convert: %w", err)
			}
			fed += res.InputFrames
			outFrames += res.OutputFrames
			if err := flush(res.OutputFrames); err != nil {
				return inFrames, outFrames, fmt.Errorf("write output: %w", err)
			}
		}
		inFrames += frames
	}

	for {
		produced, err := sess.Drain(soxstream.NewFrames(outChunk, channels))
		if err != nil {
			return inFrames, outFrames, fmt.Errorf("drain: %w", err)
		}
		if produced == 0 {
			break
		}
		outFrames += produced
		if err := flush(produced); err != nil {
			return inFrames, outFrames, fmt.Errorf("write output: %w", err)
		}
	}

	return inFrames, outFrames, nil
}
