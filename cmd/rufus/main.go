// Command rufus is an interactive console for talking to the robot.
//
// Lines typed at the prompt go to the chat model; Rufus speaks the
// reply and nods or shakes along with it. Slash commands drive the
// hardware directly:
//
//	/gesture <name>     run a discrete gesture
//	/mood <name>        run a smooth mood animation
//	/servo <name> <angle>
//	clear               forget the conversation
//	exit                quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/teslashibe/go-rufus/internal/config"
	"github.com/teslashibe/go-rufus/internal/log"
	"github.com/teslashibe/go-rufus/pkg/audio"
	"github.com/teslashibe/go-rufus/pkg/chat"
	"github.com/teslashibe/go-rufus/pkg/gesture"
	"github.com/teslashibe/go-rufus/pkg/link"
	"github.com/teslashibe/go-rufus/pkg/servo"
	"github.com/teslashibe/go-rufus/pkg/tts"
)

func main() {
	serialPort := flag.String("serial", config.SerialPort(), "Arduino serial device")
	baud := flag.Int("baud", config.SerialBaud(), "Serial baud rate")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	linkCfg := link.DefaultConfig()
	linkCfg.Port = *serialPort
	linkCfg.Baud = *baud

	arduino, err := link.Connect(linkCfg)
	if err != nil {
		log.Warn("arduino unavailable, gestures disabled", "error", err)
	}
	defer arduino.Close()

	servos := servo.NewController(arduino)
	player := gesture.NewPlayer(servos)

	var chatClient *chat.Client
	var speech tts.Provider
	speaker := audio.NewPlayer()

	if apiKey := config.OpenAIKey(); apiKey != "" {
		if chatClient, err = chat.New(apiKey); err != nil {
			log.Error("chat init failed", "error", err)
		}
		if speech, err = tts.NewOpenAI(tts.WithAPIKey(apiKey)); err != nil {
			log.Error("tts init failed", "error", err)
		}
	} else {
		fmt.Println("⚠️  No OPENAI_API_KEY set; chat disabled, slash commands still work.")
	}

	fmt.Println("🐕 Rufus console. Type a message, /gesture <name>, /mood <name>,")
	fmt.Println("   /servo <name> <angle>, clear, or exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "exit", line == "quit":
			player.Rest()
			fmt.Println("👋 Goodbye!")
			return
		case line == "clear":
			if chatClient != nil {
				chatClient.Clear()
			}
			fmt.Println("(memory cleared)")
		case strings.HasPrefix(line, "/"):
			runCommand(line, servos, player)
		default:
			converse(line, chatClient, player, speech, speaker)
		}
	}
	player.Rest()
}

// runCommand handles the slash commands that bypass chat.
func runCommand(line string, servos *servo.Controller, player *gesture.Player) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/gesture":
		if len(fields) != 2 {
			fmt.Println("usage: /gesture <name>")
			return
		}
		if err := player.Perform(gesture.Name(fields[1])); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "/mood":
		if len(fields) != 2 {
			fmt.Println("usage: /mood <name>")
			return
		}
		if err := player.PerformMood(gesture.Name(fields[1])); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "/servo":
		if len(fields) != 3 {
			fmt.Println("usage: /servo <name> <angle>")
			return
		}
		angle, err := strconv.Atoi(fields[2])
		if err != nil {
			fmt.Printf("bad angle %q\n", fields[2])
			return
		}
		if err := servos.Set(servo.Name(fields[1]), angle); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
}

// converse sends a line to chat, then reacts and speaks the reply.
func converse(line string, chatClient *chat.Client, player *gesture.Player, speech tts.Provider, speaker *audio.Player) {
	if chatClient == nil {
		fmt.Println("chat disabled, set OPENAI_API_KEY")
		return
	}

	ctx := context.Background()
	reply, err := chatClient.Respond(ctx, line)
	if err != nil {
		log.Warn("chat degraded", "error", err)
	}
	fmt.Printf("rufus> %s\n", reply.Speech)

	// Nod or shake while the audio synthesizes.
	go player.React(reply.Gesture)

	if speech != nil {
		result, err := speech.Synthesize(ctx, reply.Speech)
		if err != nil {
			log.Error("tts failed", "error", err)
			return
		}
		if err := speaker.Play(ctx, result.Audio); err != nil {
			log.Error("playback failed", "error", err)
		}
	}
}
