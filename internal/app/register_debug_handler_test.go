package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/vicaller/icm20948"
)

// fakeBus is a minimal banked register file behind the driver's
// transport primitives.
type fakeBus struct {
	banks [4][0x80]byte
	bank  byte
}

func (b *fakeBus) read(addr byte, buf []byte) error {
	reg := int(addr &^ byte(0x80))
	copy(buf, b.banks[b.bank>>4][reg:reg+len(buf)])
	return nil
}

func (b *fakeBus) write(addr byte, buf []byte) error {
	if addr == 0x7F {
		b.bank = buf[0]
		return nil
	}
	copy(b.banks[b.bank>>4][addr:], buf)
	return nil
}

func (b *fakeBus) delay(uint32) {}

func TestRegisterDebugGetMap(t *testing.T) {
	bus := &fakeBus{}
	bus.banks[0][0x00] = 0xEA // WHO_AM_I

	dev, err := icm20948.New(bus.read, bus.write, bus.delay)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleRegisterDebugWS(dev, w, r)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The map is pushed on connect.
	var resp RegisterResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading initial map: %v", err)
	}
	if resp.Type != "register_map" || len(resp.RegisterMap) == 0 {
		t.Fatalf("initial message: type=%q entries=%d", resp.Type, len(resp.RegisterMap))
	}

	// And again on an explicit get_map.
	if err := conn.WriteJSON(map[string]string{"action": "get_map"}); err != nil {
		t.Fatalf("sending get_map: %v", err)
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading get_map response: %v", err)
	}
	if resp.Type != "register_map" || len(resp.RegisterMap) == 0 {
		t.Errorf("get_map response: type=%q entries=%d", resp.Type, len(resp.RegisterMap))
	}
}

func TestIsRegisterWritable(t *testing.T) {
	cases := []struct {
		addr   byte
		ranges string
		want   bool
	}{
		{0x06, "0x06-0x07,0x7F", true},
		{0x07, "0x06-0x07,0x7F", true},
		{0x08, "0x06-0x07,0x7F", false},
		{0x7F, "0x06-0x07,0x7F", true},
		{0x00, "0x06-0x07,0x7F", false},
		{0x14, "0x10-0x14", true},
		{0x15, "0x10-0x14", false},
		{0x06, "", false},
		{0x06, " 0x06 - 0x07 , 0x7F ", true},
		{0x06, "garbage", false},
		{0x06, "garbage,0x06", true},
	}

	for _, c := range cases {
		if got := isRegisterWritable(c.addr, c.ranges); got != c.want {
			t.Errorf("isRegisterWritable(0x%02X, %q) = %v, want %v", c.addr, c.ranges, got, c.want)
		}
	}
}
