package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"vaani/internal/assistant"
	"vaani/internal/audio"
	"vaani/internal/audio/mic"
	"vaani/internal/config"
	"vaani/internal/intent"
	"vaani/internal/ipc"
	"vaani/internal/logging"
	"vaani/internal/nlu"
	"vaani/internal/notify"
	"vaani/internal/proxy"
	"vaani/internal/respond"
	"vaani/internal/tts"
	"vaani/pkg/stt"
)

func main() {
	cfgPath := cli.StringP("config", "c", "vaani.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for the fallback model")
	mode := cli.StringP("mode", "m", "loop", "loop: converse until told to stop; trigger: wait for vaani-ctl")
	file := cli.StringP("file", "f", "", "Answer a recorded audio file instead of the microphone")
	text := cli.StringP("text", "t", "", "Classify text and print the reply, no audio")
	listDevices := cli.Bool("list-devices", false, "List input devices and exit")
	cli.Parse()

	logging.Setup(*logLevel)

	log.Info("Booting up")

	godotenv.Load(*envFile)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("Failed to load config", "path", *cfgPath, "err", err)
		os.Exit(1)
	}
	if *proxyAddr != "" {
		cfg.LLM.Proxy = *proxyAddr
	}

	table := intent.Default()
	if cfg.IntentsFile != "" {
		table, err = intent.LoadFile(cfg.IntentsFile)
		if err != nil {
			log.Error("Failed to load intents", "path", cfg.IntentsFile, "err", err)
			os.Exit(1)
		}
	}

	log.Debug("Loaded intents", "count", len(table))

	responder := respond.New()
	for _, label := range table.Labels() {
		if !responder.Has(label) {
			log.Warn("Intent has no answer, fallback reply will be used", "label", label)
		}
	}

	if *text != "" {
		label, kw := intent.MatchKeyword(*text, table)
		reply := responder.Respond(label, *text)
		fmt.Printf("intent:  %s\nkeyword: %q\nreply:   %s\n", label, kw, reply.Text)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var device audio.Device
	if *file != "" {
		device, err = audio.NewFileDevice(*file)
		if err != nil {
			log.Error("Failed to load audio file", "err", err)
			os.Exit(1)
		}
	} else {
		rec := mic.NewRecorder(cfg.Audio.Device)
		if err := rec.Init(); err != nil {
			log.Error("Failed to init audio", "err", err)
			os.Exit(1)
		}
		defer rec.Close()

		if *listDevices {
			devs, err := mic.Devices()
			if err != nil {
				log.Error("Failed to list devices", "err", err)
				os.Exit(1)
			}
			for _, d := range devs {
				fmt.Println(d)
			}
			return
		}
		device = rec
	}

	log.Debug("Loaded audio input")

	seg, err := audio.NewSegmenter(cfg.Segmenter())
	if err != nil {
		log.Error("Bad audio config", "err", err)
		os.Exit(1)
	}

	whisper, err := stt.NewTranscriber(cfg.STT.Model, stt.Options{
		Language:      cfg.STT.Language,
		Threads:       cfg.STT.Threads,
		InitialPrompt: cfg.STT.InitialPrompt,
		BeamSize:      cfg.STT.BeamSize,
		Temperature:   cfg.STT.Temperature,
	})
	if err != nil {
		log.Error("Failed to init whisper", "model", cfg.STT.Model, "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	log.Debug("Loaded whisper", "lang", cfg.STT.Language)

	acfg := assistant.Config{
		Segmenter:   seg,
		Device:      device,
		Transcriber: whisper,
		Table:       table,
		Responder:   responder,
		Speaker:     tts.NewEspeak(cfg.Speech()),
		DumpDir:     cfg.DumpDir,
	}

	if cfg.LLM.Enabled {
		answerer, err := newAnswerer(cfg)
		if err != nil {
			log.Error("Failed to init fallback model", "err", err)
			os.Exit(1)
		}
		acfg.Fallback = answerer
		log.Debug("Loaded fallback model", "model", cfg.LLM.Model)
	}
	if cfg.Duck.Enabled {
		acfg.Ducker = audio.NewDucker(cfg.Ducking(), audio.Pactl{})
	}
	if cfg.Notify.Beep != "" {
		acfg.Cue = notify.NewBeeper(cfg.Notify.Beep)
	}

	a, err := assistant.New(acfg)
	if err != nil {
		log.Error("Failed to build assistant", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	if *file != "" {
		turn, err := a.Once(ctx)
		if err != nil {
			log.Error("Failed to answer file", "err", err)
			os.Exit(1)
		}
		if !turn.Speech {
			log.Warn("No speech in file", "file", *file)
		}
		return
	}

	switch *mode {
	case "loop":
		if err := a.Run(ctx); err != nil {
			log.Error("Session ended", "err", err)
			os.Exit(1)
		}
	case "trigger":
		serveTriggers(ctx, stop, a, cfg)
	default:
		log.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

func newAnswerer(cfg *config.Config) (*nlu.Answerer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	httpClient, err := proxy.NewHTTPClient(cfg.LLM.Proxy)
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	)
	return nlu.NewOpenAI(client, cfg.LLM.Model), nil
}

func serveTriggers(ctx context.Context, stop context.CancelFunc, a *assistant.Assistant, cfg *config.Config) {
	srv, err := ipc.StartServer(cfg.IPC.Socket, func(msg ipc.ControlMessage) ipc.Reply {
		switch msg.Cmd {
		case ipc.CmdListen:
			if cfg.Notify.Desktop {
				if err := notify.Desktop(ctx, "Listening...", ""); err != nil {
					log.Debug("Desktop notification failed", "err", err)
				}
			}
			turn, err := a.Once(ctx)
			if err != nil {
				log.Error("Cycle failed", "err", err)
				return ipc.Reply{Error: err.Error()}
			}
			if turn.Reply.Exit {
				stop()
			}
			return ipc.Reply{OK: true, Label: turn.Label, Text: turn.Reply.Text}
		case ipc.CmdText:
			turn := a.HandleText(ctx, msg.Arg)
			return ipc.Reply{OK: true, Label: turn.Label, Text: turn.Reply.Text}
		case ipc.CmdStop:
			stop()
			return ipc.Reply{OK: true}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.Reply{Error: "unknown command " + msg.Cmd}
		}
	})
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	log.Info("Waiting for triggers", "socket", cfg.IPC.Socket)
	<-ctx.Done()
	log.Info("Shutting down")
}
