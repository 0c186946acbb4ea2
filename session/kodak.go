package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"zinkdriver/packet"
	"zinkdriver/transport"
	"zinkdriver/zerr"
)

// KodakTiming holds the fixed delays §4.4 specifies, plus the configured
// battery gate (§4.6 config's `min_battery`).
type KodakTiming struct {
	CommandTimeout time.Duration
	ChunkDelay     time.Duration
	PostInitDelay  time.Duration
	ReconnectWait  time.Duration
	ChunkSize      int
	MinBattery     int
}

// DefaultKodakTiming matches §4.4/§4.6's defaults: 5s command timeout,
// 20ms inter-chunk delay, 500ms post-init settle, 6s reconnect wait,
// 4096-byte chunks, 30% min battery.
var DefaultKodakTiming = KodakTiming{
	CommandTimeout: 5 * time.Second,
	ChunkDelay:     20 * time.Millisecond,
	PostInitDelay:  500 * time.Millisecond,
	ReconnectWait:  6 * time.Second,
	ChunkSize:      4096,
	MinBattery:     MinBattery,
}

// Kodak drives the Kodak Step family's protocol state machine (§4.4).
type Kodak struct {
	stateMachine

	dialer  transport.Dialer
	addr    transport.Address
	channel int
	timing  KodakTiming
	log     logrus.FieldLogger

	transport transport.Transport

	isSlim       bool
	lastBattery  int
	cachedErr    *zerr.Error
	retriesUsed  int
}

// NewKodak constructs a Kodak session bound to a device address and
// channel. The transport is not opened until Connect.
func NewKodak(dialer transport.Dialer, addr transport.Address, channel int, timing KodakTiming, log logrus.FieldLogger) *Kodak {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Kodak{
		dialer:  dialer,
		addr:    addr,
		channel: channel,
		timing:  timing,
		log:     log.WithField("family", "kodak"),
	}
}

func (k *Kodak) State() State { return k.get() }

// Connect opens the transport (§4.4 connect()).
func (k *Kodak) Connect() error {
	if err := k.require(Disconnected, Failed); err != nil {
		return err
	}
	t, err := k.dialer.Dial(k.addr, k.channel)
	if err != nil {
		k.set(Failed)
		return err
	}
	k.transport = t
	k.set(Connected)
	k.log.Debug("connected")
	return nil
}

// Initialize sends GetAccessoryInfo and moves to Initialized (§4.4
// initialize()). NoPaper is tolerated: the session still reaches
// Initialized but the error is cached and surfaced by Status().
func (k *Kodak) Initialize(isSlim bool) error {
	if err := k.require(Connected); err != nil {
		return err
	}
	k.isSlim = isSlim

	req := packet.KodakGetAccessoryInfo(isSlim)
	resp, err := k.exchange(req)
	if err != nil {
		return k.fail(err)
	}
	parsed, err := packet.ParseKodakResponse(resp)
	if err != nil {
		return k.protocolMismatch(err)
	}

	k.lastBattery = parsed.BatteryPct
	k.cachedErr = nil
	if parsed.ErrorCode != 0 {
		mapped := zerr.FromKodakCode(parsed.ErrorCode)
		if mapped.Kind != zerr.KindNoPaper {
			return k.fail(mapped)
		}
		k.cachedErr = mapped
	}

	time.Sleep(k.timing.PostInitDelay)
	k.set(Initialized)
	k.log.WithField("battery", k.lastBattery).Debug("initialized")
	return nil
}

// Status refreshes charging/paper state and returns the normalized view
// (§4.4 status()).
func (k *Kodak) Status() (Status, error) {
	if err := k.require(Initialized, Printing); err != nil {
		return Status{}, err
	}

	batReq := packet.KodakGetBatteryLevel()
	batResp, err := k.exchange(batReq)
	if err != nil {
		return Status{}, k.fail(err)
	}
	batParsed, err := packet.ParseKodakResponse(batResp)
	if err != nil {
		return Status{}, k.protocolMismatch(err)
	}
	charging := batParsed.ChargingFlag != 0

	pageReq := packet.KodakGetPageType()
	pageResp, err := k.exchange(pageReq)
	if err != nil {
		return Status{}, k.fail(err)
	}
	pageParsed, err := packet.ParseKodakResponse(pageResp)
	if err != nil {
		return Status{}, k.protocolMismatch(err)
	}

	var blocking *zerr.Error
	if pageParsed.ErrorCode != 0 {
		blocking = zerr.FromKodakCode(pageParsed.ErrorCode)
	} else if k.cachedErr != nil {
		blocking = k.cachedErr
	}

	st := Status{
		BatteryPercent: k.lastBattery,
		Err:            blocking,
		Charging:       boolPtr(charging),
	}
	st.IsReady = computeReady(k.lastBattery, k.timing.MinBattery, blocking)
	if blocking != nil && blocking.Kind == zerr.KindNoPaper {
		st.NoPaper = boolPtr(true)
	}
	return st, nil
}

// Print implements §4.4 print(): battery check, page-type check,
// PrintReady, chunked transfer.
func (k *Kodak) Print(jpeg []byte, copies uint8) error {
	if err := k.require(Initialized); err != nil {
		return err
	}
	if copies == 0 {
		return zerr.New(zerr.KindInvalidArgument, "copies must be >= 1")
	}

	// Step 1: refresh battery.
	batReq := packet.KodakGetAccessoryInfo(k.isSlim)
	batResp, err := k.exchange(batReq)
	if err != nil {
		return k.fail(err)
	}
	batParsed, err := packet.ParseKodakResponse(batResp)
	if err != nil {
		return k.protocolMismatch(err)
	}
	k.lastBattery = batParsed.BatteryPct
	if k.lastBattery < k.timing.MinBattery {
		return zerr.New(zerr.KindBatteryTooLow, "battery at print time")
	}

	// Step 2: page type, fatal on paper-related errors.
	pageReq := packet.KodakGetPageType()
	pageResp, err := k.exchange(pageReq)
	if err != nil {
		return k.fail(err)
	}
	pageParsed, err := packet.ParseKodakResponse(pageResp)
	if err != nil {
		return k.protocolMismatch(err)
	}
	if pageParsed.ErrorCode != 0 {
		return zerr.FromKodakCode(pageParsed.ErrorCode)
	}

	// Step 3: PrintReady.
	readyReq, err := packet.KodakPrintReady(uint32(len(jpeg)), copies)
	if err != nil {
		return zerr.Wrap(zerr.KindInvalidImage, "kodak print ready", err)
	}
	readyResp, err := k.exchange(readyReq)
	if err != nil {
		return k.fail(err)
	}
	readyParsed, err := packet.ParseKodakResponse(readyResp)
	if err != nil {
		return k.protocolMismatch(err)
	}
	if readyParsed.ErrorCode != 0 {
		return zerr.FromKodakCode(readyParsed.ErrorCode)
	}

	// Step 4: chunked transfer.
	k.set(Printing)
	if err := chunkedTransfer(k.transport, jpeg, k.timing.ChunkSize, k.timing.ChunkDelay); err != nil {
		return k.fail(err)
	}

	k.set(Initialized)
	k.log.WithField("bytes", len(jpeg)).Info("print transfer complete")
	return nil
}

// PrintCount sends GetPrintCount and returns the device's big-endian
// 16-bit counter (§4.2).
func (k *Kodak) PrintCount() (int, error) {
	if err := k.require(Initialized); err != nil {
		return 0, err
	}
	resp, err := k.exchange(packet.KodakGetPrintCount())
	if err != nil {
		return 0, k.fail(err)
	}
	parsed, err := packet.ParseKodakResponse(resp)
	if err != nil {
		return 0, k.protocolMismatch(err)
	}
	return int(parsed.PrintCount), nil
}

// AutoPowerOff sends GetAutoPowerOff and returns the configured minutes
// (§4.2). Kodak exposes no corresponding set; only the read side is
// specified for this family.
func (k *Kodak) AutoPowerOff() (int, error) {
	if err := k.require(Initialized); err != nil {
		return 0, err
	}
	resp, err := k.exchange(packet.KodakGetAutoPowerOff())
	if err != nil {
		return 0, k.fail(err)
	}
	parsed, err := packet.ParseKodakResponse(resp)
	if err != nil {
		return 0, k.protocolMismatch(err)
	}
	return parsed.AutoPowerOff, nil
}

// Close releases the transport (§3 "on failure the session transitions
// to Failed and releases the transport"; also used for normal teardown).
func (k *Kodak) Close() error {
	if k.transport == nil {
		return nil
	}
	err := k.transport.Close()
	k.set(Disconnected)
	return err
}

// Recover implements §4.4's "Recovery on transient failure": close
// transport, wait 6s, reopen, send GetAccessoryInfo, retry once. It is
// the caller's responsibility to invoke Recover only after a
// Transport(Timeout)/Transport(Io) failure (§7 propagation policy).
func (k *Kodak) Recover() error {
	if k.retriesUsed > 0 {
		k.set(Failed)
		return zerr.New(zerr.KindTransportIo, "recovery already attempted once")
	}
	k.retriesUsed++

	if k.transport != nil {
		k.transport.Close()
	}
	time.Sleep(k.timing.ReconnectWait)

	t, err := k.dialer.Dial(k.addr, k.channel)
	if err != nil {
		k.set(Failed)
		return err
	}
	k.transport = t
	k.set(Connected)

	return k.Initialize(k.isSlim)
}

func (k *Kodak) exchange(req [packet.Size]byte) ([]byte, error) {
	return exchange(k.transport, k.log, req, k.timing.CommandTimeout)
}

func (k *Kodak) fail(err error) error {
	k.set(Failed)
	if k.transport != nil {
		k.transport.Close()
	}
	k.log.WithError(err).Warn("session failed")
	return err
}

func (k *Kodak) protocolMismatch(err error) error {
	return k.fail(zerr.Wrap(zerr.KindProtocolMismatch, "kodak response", err))
}
