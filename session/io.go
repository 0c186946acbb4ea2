package session

import (
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"zinkdriver/packet"
	"zinkdriver/transport"
	"zinkdriver/zerr"
)

// exchange writes req and reads back exactly packet.Size bytes within
// timeout (§4.4/§4.5 "ACK discipline": every command expects exactly one
// 34-byte response).
func exchange(t transport.Transport, log logrus.FieldLogger, req [packet.Size]byte, timeout time.Duration) ([]byte, error) {
	log.WithField("tx", hex.EncodeToString(req[:])).Debug("sending command")
	if err := t.Write(req[:]); err != nil {
		return nil, err
	}
	resp, err := t.ReadExact(packet.Size, timeout)
	if err != nil {
		return nil, err
	}
	log.WithField("rx", hex.EncodeToString(resp)).Debug("received response")
	return resp, nil
}

// chunkedTransfer writes data to t in chunkSize-byte pieces (the last one
// possibly shorter), sleeping delay between writes (§4.4 step 4, §4.5
// step 4, §8 "chunked transfer" invariant). Chunks are raw bytes with no
// per-chunk framing.
func chunkedTransfer(t transport.Transport, data []byte, chunkSize int, delay time.Duration) error {
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := t.Write(data[i:end]); err != nil {
			return zerr.Wrap(zerr.KindTransportIo, "image chunk transfer", err)
		}
		if end < len(data) {
			time.Sleep(delay)
		}
	}
	return nil
}
