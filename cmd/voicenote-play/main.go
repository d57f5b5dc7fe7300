// ABOUTME: Plays a base64 speech payload from a file or stdin
// ABOUTME: Decodes with container detection and the headerless PCM fallback
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pak-ariess/voicenote-go/internal/observability"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
	"github.com/pak-ariess/voicenote-go/pkg/audio/encode"
	"github.com/pak-ariess/voicenote-go/pkg/audio/output"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

var (
	inPath   = flag.String("in", "-", "File holding the base64 payload, - for stdin")
	rate     = flag.Int("rate", playback.DefaultSampleRate, "Sample rate of headerless PCM payloads")
	channels = flag.Int("channels", 1, "Channel count of headerless PCM payloads")
	export   = flag.String("export", "", "Also save the decoded audio as WAV")
	noPlay   = flag.Bool("no-play", false, "Decode (and export) without playing")
	logLevel = flag.String("log-level", "info", "Log level")
)

func main() {
	flag.Parse()
	observability.InitLogger(*logLevel, true, os.Stderr)

	payload, err := readPayload(*inPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read payload")
	}

	buf, err := decode.New(decode.WithPCMFormat(*rate, *channels)).Decode(payload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode payload")
	}
	log.Info().
		Str("codec", buf.Format.Codec).
		Int("sample_rate", buf.SampleRate()).
		Int("channels", buf.NumberOfChannels()).
		Float64("duration", buf.Duration()).
		Msg("Decoded voice note")

	if *export != "" {
		if err := encode.SaveWAV(*export, buf); err != nil {
			log.Fatal().Err(err).Msg("Failed to export")
		}
		log.Info().Str("path", *export).Msg("Exported WAV")
	}

	if *noPlay {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, buf); err != nil {
		log.Fatal().Err(err).Msg("Playback failed")
	}
}

func readPayload(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// play runs one pass of buf, drawing progress on stderr
func play(ctx context.Context, buf *audio.Buffer) error {
	p := playback.New(buf, playback.Config{
		SampleRate: buf.SampleRate(),
		NewContext: output.Factory(),
	})
	defer p.Close()

	if err := p.TogglePlay(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		s := p.Snapshot()
		fmt.Fprintf(os.Stderr, "\r%5.1f%%  %.1fs / %.1fs", s.Progress*100, s.Elapsed, s.Duration)
		if s.State == playback.StateFinished {
			fmt.Fprintln(os.Stderr)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr)
			return nil
		case <-ticker.C:
		}
	}
}
