package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ixr-flow/board"
	"ixr-flow/metric"
	"ixr-flow/storage"
	"ixr-flow/stream"
)

func main() {
	var (
		broker    = flag.String("broker", "localhost", "MQTT broker host for sample ingest")
		port      = flag.Int("port", 1883, "MQTT broker port")
		username  = flag.String("username", "", "MQTT username")
		password  = flag.String("password", "", "MQTT password")
		topic     = flag.String("topic", "ixr/+/samples/#", "MQTT sample topic filter")
		useTLS    = flag.Bool("tls", false, "connect to the broker over TLS")
		synthetic = flag.Bool("synthetic", false, "use the synthetic board instead of MQTT")
		listen    = flag.String("listen", ":8080", "HTTP listen address")
		csvPath   = flag.String("csv", "", "per-tick metric CSV path (empty disables)")
		edfPath   = flag.String("edf", "", "raw EEG EDF recording path (empty disables)")
		publish   = flag.Bool("publish", false, "publish the power metric over MQTT")
		pubTopic  = flag.String("publish-topic", "ixr/metrics/power", "MQTT topic for the power metric")
		reference = flag.String("reference", "mean", "re-reference mode: mean or ref")
	)
	flag.Parse()

	boardConfig := board.DefaultConfig()
	boardConfig.MQTTBroker = *broker
	boardConfig.MQTTPort = *port
	boardConfig.MQTTUsername = *username
	boardConfig.MQTTPassword = *password
	boardConfig.MQTTTopic = *topic
	boardConfig.UseTLS = *useTLS

	pipelineConfig := metric.DefaultConfig()
	pipelineConfig.Reference = metric.ReferenceMode(*reference)

	var (
		source    board.Source
		collector *board.Collector
		recorder  *storage.EDFRecorder
	)

	if *synthetic {
		log.Printf("[BOARD] Using synthetic board")
		source = board.NewSynthetic(boardConfig)
	} else {
		collector = board.NewCollector(boardConfig)

		if *edfPath != "" {
			names := make([]string, 0, len(collector.Channels()))
			for _, ch := range collector.Channels() {
				names = append(names, ch.Name)
			}
			var err error
			recorder, err = storage.NewEDFRecorder(*edfPath, boardConfig.DeviceID, names, boardConfig.EEGSamplingRate)
			if err != nil {
				log.Fatalf("EDF recorder failed: %v", err)
			}
			collector.SetRecorder(recorder)
		}

		if err := collector.Start(); err != nil {
			log.Printf("[WARN] Board collector failed to start: %v", err)
			log.Printf("[WARN] Falling back to synthetic board")
			collector = nil
			source = board.NewSynthetic(boardConfig)
		} else {
			source = collector
			defer collector.Stop()
		}
	}

	engine, err := metric.NewEngine(pipelineConfig, source)
	if err != nil {
		log.Fatalf("Pipeline setup failed: %v", err)
	}

	server := stream.NewServer(*listen, engine, collector)
	engine.AddSink(server)
	server.Start()

	if *csvPath != "" {
		csvWriter := storage.NewMetricCSVWriter(*csvPath)
		engine.AddSink(csvWriter)
		defer csvWriter.Close()
	}

	if *publish {
		publisherConfig := stream.DefaultPublisherConfig()
		publisherConfig.Broker = *broker
		publisherConfig.Port = *port
		publisherConfig.Username = *username
		publisherConfig.Password = *password
		publisherConfig.UseTLS = *useTLS
		publisherConfig.Topic = *pubTopic

		publisher := stream.NewPublisher(publisherConfig)
		if err := publisher.Start(); err != nil {
			log.Printf("[WARN] Metric publisher failed to start: %v", err)
		} else {
			engine.AddSink(publisher)
			defer publisher.Stop()
		}
	}

	scheduler := metric.NewScheduler(engine)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("[PIPELINE] Shutting down...")
		scheduler.Stop()
	}()

	runErr := scheduler.Run()

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("[EDF] Close failed: %v", err)
		}
	}

	if runErr != nil {
		log.Fatalf("Pipeline halted: %v", runErr)
	}
}
