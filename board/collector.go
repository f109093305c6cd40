package board

import (
	"crypto/tls"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Collector ingests sample frames from an MQTT broker into per-group ring
// buffers and serves trailing windows from them.
type Collector struct {
	config   Config
	channels []Channel
	client   mqtt.Client
	buffers  map[ChannelGroup]*SampleBuffer
	rates    map[ChannelGroup]int
	recorder Recorder
	stats    *Statistics
	frames   chan *SampleFrame
	done     chan struct{}
}

func NewCollector(config Config) *Collector {
	channels := DefaultChannels(config.DisplayReference)
	rates := map[ChannelGroup]int{
		GroupEEG:    config.EEGSamplingRate,
		GroupMotion: config.MotionSamplingRate,
		GroupPPG:    config.PPGSamplingRate,
	}
	rows := map[ChannelGroup]int{
		GroupEEG:    len(channels),
		GroupMotion: config.MotionChannels,
		GroupPPG:    config.PPGChannels,
	}

	buffers := make(map[ChannelGroup]*SampleBuffer, len(rates))
	for group, rate := range rates {
		buffers[group] = NewSampleBuffer(rows[group], config.LookBackSeconds*rate)
	}

	return &Collector{
		config:   config,
		channels: channels,
		buffers:  buffers,
		rates:    rates,
		stats:    NewStatistics(),
		frames:   make(chan *SampleFrame, config.QueueSize),
		done:     make(chan struct{}),
	}
}

// SetRecorder attaches a raw-EEG recorder. Must be called before Start.
func (c *Collector) SetRecorder(r Recorder) {
	c.recorder = r
}

func (c *Collector) Start() error {
	log.Printf("[BOARD] Starting collector...")
	log.Printf("[BOARD] Config: Broker=%s:%d Topic=%s", c.config.MQTTBroker, c.config.MQTTPort, c.config.MQTTTopic)

	opts := mqtt.NewClientOptions()

	protocol := "tcp"
	if c.config.UseTLS {
		protocol = "tls"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", protocol, c.config.MQTTBroker, c.config.MQTTPort)
	opts.AddBroker(brokerURL)

	clientID := fmt.Sprintf("ixr-flow-board-%d", time.Now().Unix())
	opts.SetClientID(clientID)

	if c.config.MQTTUsername != "" {
		opts.SetUsername(c.config.MQTTUsername)
		opts.SetPassword(c.config.MQTTPassword)
	}

	if c.config.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: c.config.InsecureSkipTLS,
		})
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = c.onConnect
	opts.OnConnectionLost = c.onConnectionLost
	opts.OnReconnecting = c.onReconnecting

	c.client = mqtt.NewClient(opts)

	log.Printf("[MQTT] Connecting to %s as %s...", brokerURL, clientID)

	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("MQTT connect timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	go c.ingestWorker()

	log.Printf("[BOARD] Collector started successfully")
	return nil
}

func (c *Collector) Stop() {
	log.Printf("[BOARD] Stopping collector...")
	close(c.done)

	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(1000)
	}

	log.Printf("[BOARD] Collector stopped - %d frames ingested, %d dropped",
		c.stats.FramesReceived, c.stats.FramesDropped)
}

func (c *Collector) onConnect(client mqtt.Client) {
	log.Printf("[MQTT] Connected successfully")

	token := client.Subscribe(c.config.MQTTTopic, 0, c.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("[MQTT] Subscribe timeout for %s", c.config.MQTTTopic)
		return
	}
	if token.Error() != nil {
		log.Printf("[MQTT] Subscribe error: %v", token.Error())
		return
	}

	log.Printf("[MQTT] Subscribed to %s", c.config.MQTTTopic)
}

func (c *Collector) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("[MQTT] Connection lost: %v (will auto-reconnect)", err)
}

func (c *Collector) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Printf("[MQTT] Reconnecting...")
}

func (c *Collector) onMessage(client mqtt.Client, msg mqtt.Message) {
	frame := ParseFrame(msg.Topic(), msg.Payload())
	if frame == nil {
		c.stats.RecordReject()
		return
	}

	select {
	case c.frames <- frame:
	case <-c.done:
	default:
		// Queue full, drop the frame and keep the stream current.
		c.stats.RecordDrop()
	}
}

func (c *Collector) ingestWorker() {
	log.Printf("[BOARD] Ingest worker started")

	for {
		select {
		case frame := <-c.frames:
			buffer, ok := c.buffers[frame.Group]
			if !ok {
				c.stats.RecordReject()
				continue
			}
			buffer.Push(frame.Samples)
			c.stats.RecordFrame(frame.Group, len(frame.Samples[0]))

			if frame.Group == GroupEEG && c.recorder != nil {
				if err := c.recorder.Append(frame.Samples); err != nil {
					log.Printf("[BOARD] Recorder error: %v", err)
				}
			}

		case <-c.done:
			log.Printf("[BOARD] Ingest worker stopped")
			return
		}
	}
}

// Window implements Source.
func (c *Collector) Window(group ChannelGroup, d time.Duration) ([][]float64, error) {
	select {
	case <-c.done:
		return nil, ErrStopped
	default:
	}
	if c.client == nil || !c.client.IsConnected() {
		return nil, fmt.Errorf("collector disconnected: %w", ErrNotReady)
	}
	buffer, ok := c.buffers[group]
	if !ok {
		return nil, fmt.Errorf("unknown channel group %q", group)
	}
	n := int(d.Seconds() * float64(c.rates[group]))
	return buffer.Window(n), nil
}

// Ready implements Source.
func (c *Collector) Ready() bool {
	return c.client != nil && c.client.IsConnected()
}

// SamplingRate implements Source.
func (c *Collector) SamplingRate(group ChannelGroup) int {
	return c.rates[group]
}

// Channels implements Source.
func (c *Collector) Channels() []Channel {
	return c.channels
}

func (c *Collector) Stats() *Statistics {
	return c.stats
}

func (c *Collector) BufferStats() map[string]interface{} {
	stats := make(map[string]interface{}, len(c.buffers))
	for group, buffer := range c.buffers {
		stats[string(group)] = buffer.GetStats()
	}
	return stats
}
