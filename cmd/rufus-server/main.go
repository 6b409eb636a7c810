// Command rufus-server runs the animatronic's control server on the Pi.
//
// It opens the Arduino serial link, wires the servo and gesture layers
// on top of it, and serves the HTTP remote API. Chat and speech come up
// only when an OpenAI key is configured; everything else works without
// one, and the server starts even with the Arduino unplugged.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-rufus/internal/config"
	"github.com/teslashibe/go-rufus/internal/log"
	"github.com/teslashibe/go-rufus/pkg/audio"
	"github.com/teslashibe/go-rufus/pkg/chat"
	"github.com/teslashibe/go-rufus/pkg/gesture"
	"github.com/teslashibe/go-rufus/pkg/link"
	"github.com/teslashibe/go-rufus/pkg/servo"
	"github.com/teslashibe/go-rufus/pkg/tts"
	"github.com/teslashibe/go-rufus/pkg/web"
)

// voice glues synthesis to playback behind the web server's Speaker.
type voice struct {
	tts    tts.Provider
	player *audio.Player
}

func (v *voice) Say(ctx context.Context, text string) error {
	result, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return v.player.Play(ctx, result.Audio)
}

func main() {
	port := flag.String("port", config.HTTPPort(), "HTTP listen port")
	serialPort := flag.String("serial", config.SerialPort(), "Arduino serial device")
	baud := flag.Int("baud", config.SerialBaud(), "Serial baud rate")
	waitAck := flag.Bool("ack", false, "Wait for OK acknowledgment after every servo command")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("🐕 Rufus Control Server")
	fmt.Printf("   Serial: %s @ %d\n", *serialPort, *baud)
	fmt.Printf("   HTTP:   :%s\n", *port)
	fmt.Println()

	linkCfg := link.DefaultConfig()
	linkCfg.Port = *serialPort
	linkCfg.Baud = *baud
	linkCfg.WaitAck = *waitAck

	arduino, err := link.Connect(linkCfg)
	if err != nil {
		// Degraded mode: the API still serves, health reports offline.
		log.Warn("arduino unavailable, servo commands disabled", "error", err)
	}
	defer arduino.Close()

	servos := servo.NewController(arduino)
	player := gesture.NewPlayer(servos)

	deps := web.Deps{
		Servos:   servos,
		Gestures: player,
	}

	apiKey := config.OpenAIKey()
	if apiKey == "" {
		log.Warn("no OpenAI API key, chat and speech disabled")
	} else {
		chatClient, err := chat.New(apiKey)
		if err != nil {
			log.Error("chat init failed", "error", err)
		} else {
			deps.Chat = chatClient
		}

		speech, err := tts.NewOpenAI(tts.WithAPIKey(apiKey))
		if err != nil {
			log.Error("tts init failed", "error", err)
		} else {
			deps.Speaker = &voice{tts: speech, player: audio.NewPlayer()}
		}
	}

	server := web.NewServer(*port, deps)
	server.UpdateState(func(st *web.State) {
		st.ArduinoConnected = arduino.Ready()
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down...")
		player.Rest()
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
