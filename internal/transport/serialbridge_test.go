package transport

import (
	"bytes"
	"errors"
	"testing"
)

// pipeStream feeds canned responses and records everything written.
type pipeStream struct {
	wrote  bytes.Buffer
	toRead bytes.Buffer
	closed bool
}

func (p *pipeStream) Write(b []byte) (int, error) { return p.wrote.Write(b) }
func (p *pipeStream) Read(b []byte) (int, error)  { return p.toRead.Read(b) }
func (p *pipeStream) Close() error                { p.closed = true; return nil }

func TestBridgeRead(t *testing.T) {
	stream := &pipeStream{}
	stream.toRead.Write([]byte{bridgeStatusOK, 0xEA, 0x41})

	b := NewSerialBridge(stream)
	buf := make([]byte, 2)
	if err := b.Read(0x80, buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if buf[0] != 0xEA || buf[1] != 0x41 {
		t.Errorf("got data % X, want EA 41", buf)
	}
	want := []byte{bridgeOpRead, 0x80, 2}
	if !bytes.Equal(stream.wrote.Bytes(), want) {
		t.Errorf("request frame % X, want % X", stream.wrote.Bytes(), want)
	}
}

func TestBridgeWrite(t *testing.T) {
	stream := &pipeStream{}
	stream.toRead.Write([]byte{bridgeStatusOK})

	b := NewSerialBridge(stream)
	if err := b.Write(0x7F, []byte{0x20}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []byte{bridgeOpWrite, 0x7F, 1, 0x20}
	if !bytes.Equal(stream.wrote.Bytes(), want) {
		t.Errorf("request frame % X, want % X", stream.wrote.Bytes(), want)
	}
}

func TestBridgeFaultStatus(t *testing.T) {
	stream := &pipeStream{}
	stream.toRead.Write([]byte{0x03, 0x00, 0x00})

	b := NewSerialBridge(stream)
	err := b.Read(0x80, make([]byte, 2))
	if !errors.Is(err, ErrBridgeFault) {
		t.Errorf("got %v, want ErrBridgeFault", err)
	}
}

func TestBridgeShortResponse(t *testing.T) {
	stream := &pipeStream{}
	stream.toRead.Write([]byte{bridgeStatusOK, 0xEA})

	b := NewSerialBridge(stream)
	if err := b.Read(0x80, make([]byte, 6)); err == nil {
		t.Error("expected error on truncated response")
	}
}
