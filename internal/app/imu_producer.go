package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vicaller/icm20948"
	"github.com/vicaller/icm20948/internal/config"
	"github.com/vicaller/icm20948/internal/transport"
)

// busCloser is what both transport backends give us.
type busCloser interface {
	Read(addr byte, buf []byte) error
	Write(addr byte, buf []byte) error
	Delay(us uint32)
	Close() error
}

func openBus(cfg *config.Config) (busCloser, error) {
	switch cfg.Transport {
	case "spi":
		return transport.OpenSPI(cfg.SPIDevice, cfg.SPISpeedHz)
	case "serial":
		return transport.OpenSerialBridge(cfg.SerialPort, cfg.SerialBaudRate)
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

func sensorMode(enabled bool) icm20948.SensorMode {
	if enabled {
		return icm20948.SensorEnabled
	}
	return icm20948.SensorDisabled
}

// RunIMUProducer samples the ICM-20948 in a loop and publishes gyro and
// accel readings to MQTT.
func RunIMUProducer() error {
	log.Println("starting ICM-20948 sample producer")

	cfg := config.Get()

	bus, err := openBus(cfg)
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	defer bus.Close()

	dev, err := icm20948.New(bus.Read, bus.Write, bus.Delay)
	if err != nil {
		return fmt.Errorf("init ICM-20948: %w", err)
	}

	settings := icm20948.Settings{
		Gyro:  sensorMode(cfg.GyroEnabled),
		Accel: sensorMode(cfg.AccelEnabled),
	}
	if err := dev.ApplySettings(settings); err != nil {
		return fmt.Errorf("apply sensor settings: %w", err)
	}
	log.Printf("sensor configured: gyro=%v accel=%v", cfg.GyroEnabled, cfg.AccelEnabled)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	if cfg.RegisterDebugPort != 0 {
		go func() {
			if err := RunRegisterDebug(dev); err != nil {
				log.Printf("register debug server error: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		var gyro, accel icm20948.Sample

		if cfg.GyroEnabled {
			gyro, err = dev.GetGyroData()
			if err != nil {
				log.Printf("gyro read error: %v", err)
			} else if payload, err := json.Marshal(gyro); err != nil {
				log.Printf("gyro marshal error: %v", err)
			} else {
				if token := client.Publish(cfg.TopicGyro, 0, true, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (%s): %v", cfg.TopicGyro, token.Error())
					continue
				}
			}
		}

		if cfg.AccelEnabled {
			accel, err = dev.GetAccelData()
			if err != nil {
				log.Printf("accel read error: %v", err)
			} else if payload, err := json.Marshal(accel); err != nil {
				log.Printf("accel marshal error: %v", err)
			} else {
				if token := client.Publish(cfg.TopicAccel, 0, true, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (%s): %v", cfg.TopicAccel, token.Error())
					continue
				}
			}
		}

		log.Printf("%s tick: gyro gx=%d gy=%d gz=%d | accel ax=%d ay=%d az=%d",
			t.Format(time.RFC3339),
			gyro.X, gyro.Y, gyro.Z,
			accel.X, accel.Y, accel.Z,
		)
	}
	return nil
}
