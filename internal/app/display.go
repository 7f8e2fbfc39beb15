package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/vicaller/icm20948"
	"github.com/vicaller/icm20948/internal/config"
)

// DisplayData holds the latest samples for display
type DisplayData struct {
	mu sync.RWMutex

	gyro      icm20948.Sample
	haveGyro  bool
	accel     icm20948.Sample
	haveAccel bool
}

// RunDisplay renders the latest gyro and accel readings on an SSD1306
// OLED over I2C.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	display, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(display); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	gyroToken := client.Subscribe(cfg.TopicGyro, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s icm20948.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: gyro unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.gyro = s
		data.haveGyro = true
		data.mu.Unlock()
	})
	gyroToken.Wait()
	if gyroToken.Error() != nil {
		return gyroToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicGyro)

	accelToken := client.Subscribe(cfg.TopicAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s icm20948.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: accel unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.accel = s
		data.haveAccel = true
		data.mu.Unlock()
	})
	accelToken.Wait()
	if accelToken.Error() != nil {
		return accelToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicAccel)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := DisplayData{
			gyro:      data.gyro,
			haveGyro:  data.haveGyro,
			accel:     data.accel,
			haveAccel: data.haveAccel,
		}
		data.mu.RUnlock()

		if err := updateSampleDisplay(display, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func blankImage() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}
	return img
}

func updateSampleDisplay(dev *ssd1306.Dev, data *DisplayData) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !data.haveGyro && !data.haveAccel {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("ICM-20948"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		// Gyro in dps
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("G:%5d %5d", data.gyro.X, data.gyro.Y)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("  %5d", data.gyro.Z)))

		// Accel in mg
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("A:%5d %5d", data.accel.X, data.accel.Y)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("  %5d", data.accel.Z)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("ICM-20948"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Sample Monitor"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
