package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vicaller/icm20948"
	"github.com/vicaller/icm20948/internal/config"
)

// RunConsole subscribes to the sample topics and prints readings until
// interrupted.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	gyroToken := client.Subscribe(cfg.TopicGyro, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s icm20948.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: gyro unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[GYRO ] x=%6d y=%6d z=%6d dps\n",
			s.X, s.Y, s.Z,
		)
	})
	gyroToken.Wait()
	if gyroToken.Error() != nil {
		return gyroToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGyro)

	accelToken := client.Subscribe(cfg.TopicAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s icm20948.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: accel unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ACCEL] x=%6d y=%6d z=%6d mg\n",
			s.X, s.Y, s.Z,
		)
	})
	accelToken.Wait()
	if accelToken.Error() != nil {
		return accelToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAccel)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
