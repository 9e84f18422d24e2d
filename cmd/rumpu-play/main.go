package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/gomidi"
	"github.com/taleva/rumpu/graph"
	"github.com/taleva/rumpu/oto"
	"github.com/taleva/rumpu/seq"
	"github.com/taleva/rumpu/synth"
	"github.com/taleva/rumpu/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original kit file is.")
	play := flag.Bool("p", false, "Play the input kits (default behaviour when no other output is defined).")
	live := flag.Bool("l", false, "Run the kit live until interrupted, instead of bouncing a fixed number of bars.")
	jam := flag.Bool("j", false, "Open the first MIDI input and map note-ons to manual voice triggers (live mode).")
	bars := flag.Int("bars", 8, "Number of bars to render when bouncing.")
	seed := flag.Uint("seed", 0, "Session seed; overrides the kit's own. 0 derives one from the clock and the kit.")
	rawOut := flag.Bool("r", false, "Output the rendered kit as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered kit as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true
	}
	var audioContext rumpu.AudioContext
	if *play || *live {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}

	loadKit := func(filename string) (rumpu.Kit, error) {
		if filename == "" {
			return rumpu.DefaultKit(), nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return rumpu.Kit{}, fmt.Errorf("could not read file %v: %v", filename, err)
		}
		return rumpu.ParseKit(inputBytes)
	}

	newSession := func(kit rumpu.Kit) (*seq.Scheduler, *graph.Renderer) {
		kitSeed := kit.Seed
		if *seed != 0 {
			kitSeed = uint32(*seed)
		}
		if kitSeed == 0 {
			kitSeed = rumpu.SessionSeed(uint32(time.Now().Unix()/3600), kit.Hash())
		}
		renderer := graph.NewRenderer()
		engine := synth.NewEngine(renderer, rumpu.NewRand(kitSeed), nil)
		kit.Enabled = true
		return seq.NewScheduler(seq.NewBroker(), engine, kit), renderer
	}

	runLive := func(kit rumpu.Kit) error {
		scheduler, renderer := newSession(kit)
		go scheduler.Run()
		defer scheduler.Close()
		if *jam {
			midiContext := gomidi.NewContext(scheduler)
			defer midiContext.Close()
			if err := midiContext.TryToOpenBy("", true); err != nil {
				fmt.Fprintf(os.Stderr, "MIDI: %v\n", err)
			}
		}
		playWaiter := audioContext.Play(graph.NewStream(renderer))
		defer playWaiter.Close()
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		return nil
	}

	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			_, name := filepath.Split(filename)
			if name == "" {
				name = "default"
			}
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		kit, err := loadKit(filename)
		if err != nil {
			return err
		}
		if *live {
			return runLive(kit)
		}
		scheduler, _ := newSession(kit)
		buffer := scheduler.Bounce(*bars)
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			audioContext.Play(buffer.Source()).Wait()
		}
		return nil
	}

	retval := 0
	if flag.NArg() == 0 {
		if err := process(""); err != nil {
			fmt.Fprintf(os.Stderr, "could not process the default kit: %v\n", err)
			retval = 1
		}
	}
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Rumpu command line utility for playing .yml/.json kit files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
