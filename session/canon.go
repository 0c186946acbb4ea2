package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"zinkdriver/packet"
	"zinkdriver/transport"
	"zinkdriver/zerr"
)

// CanonTiming holds the fixed delays §4.5 specifies, plus the configured
// battery gate (§4.6 config's `min_battery`).
type CanonTiming struct {
	CommandTimeout time.Duration
	ChunkDelay     time.Duration
	AutoDisconnect time.Duration
	ChunkSize      int
	MinBattery     int
}

// DefaultCanonTiming matches §4.5/§4.6's defaults: 5s command timeout,
// 20ms inter-chunk delay, 990-byte chunks, 30s auto-disconnect, 30% min
// battery.
var DefaultCanonTiming = CanonTiming{
	CommandTimeout: 5 * time.Second,
	ChunkDelay:     20 * time.Millisecond,
	AutoDisconnect: 30 * time.Second,
	ChunkSize:      990,
	MinBattery:     MinBattery,
}

// ValidAutoPowerOffMinutes are the only accepted values for
// SetAutoPowerOff (§7 InvalidArgument).
var ValidAutoPowerOffMinutes = map[int]bool{3: true, 5: true, 10: true}

// Canon drives the Canon Ivy 2 protocol state machine (§4.5).
type Canon struct {
	stateMachine

	dialer  transport.Dialer
	addr    transport.Address
	channel int
	timing  CanonTiming
	log     logrus.FieldLogger

	transport transport.Transport

	lastBattery int
	mtu         uint16
	retriesUsed int

	disconnectTimer *autoDisconnectTimer
}

// NewCanon constructs a Canon session bound to a device address and
// channel. The transport is not opened until Connect.
func NewCanon(dialer transport.Dialer, addr transport.Address, channel int, timing CanonTiming, log logrus.FieldLogger) *Canon {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Canon{
		dialer:  dialer,
		addr:    addr,
		channel: channel,
		timing:  timing,
		log:     log.WithField("family", "canon"),
	}
	c.disconnectTimer = newAutoDisconnectTimer(timing.AutoDisconnect, c.onAutoDisconnect)
	return c
}

func (c *Canon) State() State { return c.get() }

// Connect opens the transport (§4.5 connect()).
func (c *Canon) Connect() error {
	if err := c.require(Disconnected, Failed); err != nil {
		return err
	}
	t, err := c.dialer.Dial(c.addr, c.channel)
	if err != nil {
		c.set(Failed)
		return err
	}
	c.transport = t
	c.set(Connected)
	c.log.Debug("connected")
	return nil
}

// StartSession sends the session-init request and caches battery/MTU
// (§4.5 start_session()).
func (c *Canon) StartSession() error {
	if err := c.require(Connected); err != nil {
		return err
	}
	req := packet.CanonStartSession()
	resp, err := c.exchange(req)
	if err != nil {
		return c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdStartSession {
		return c.ackMismatch()
	}

	fields := packet.ParseStartSessionPayload(parsed.Payload)
	c.lastBattery = fields.BatteryPercent
	c.mtu = fields.MTU

	c.set(Initialized)
	c.disconnectTimer.Reset()
	c.log.WithField("battery", c.lastBattery).WithField("mtu", c.mtu).Debug("session started")
	return nil
}

// Status sends GetStatus and parses battery, USB, and mechanical-state
// bits (§4.5 status()).
func (c *Canon) Status() (Status, error) {
	if err := c.require(Initialized, Printing); err != nil {
		return Status{}, err
	}
	c.disconnectTimer.Reset()

	req := packet.CanonGetStatus()
	resp, err := c.exchange(req)
	if err != nil {
		return Status{}, c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return Status{}, c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdGetStatus {
		return Status{}, c.ackMismatch()
	}

	fields := packet.ParseStatusPayload(parsed.Payload)
	c.lastBattery = fields.BatteryPercent

	var blocking *zerr.Error
	if parsed.ErrorCode != 0 {
		blocking = zerr.FromCanonCode(parsed.ErrorCode)
	}
	if blocking == nil {
		blocking = zerr.FromCanonQueueFlags(fields.QueueFlags)
	}

	st := Status{
		BatteryPercent: fields.BatteryPercent,
		Err:            blocking,
	}
	st.IsReady = computeReady(fields.BatteryPercent, c.timing.MinBattery, blocking)
	st.CoverOpen = boolPtr(fields.QueueFlags&zerr.CanonQueueCoverOpen != 0)
	st.NoPaper = boolPtr(fields.QueueFlags&zerr.CanonQueueNoPaper != 0)
	st.Charging = boolPtr(fields.USBConnected)
	return st, nil
}

// Settings reads the SettingAccessory payload (advisory, §4.5 settings()).
func (c *Canon) Settings() ([26]byte, error) {
	if err := c.require(Initialized, Printing); err != nil {
		return [26]byte{}, err
	}
	req := packet.CanonSettingAccessory(false)
	resp, err := c.exchange(req)
	if err != nil {
		return [26]byte{}, c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return [26]byte{}, c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdSettingAccessory {
		return [26]byte{}, c.ackMismatch()
	}
	return parsed.Payload, nil
}

// SetAutoPowerOff writes the auto-power-off minutes (§4.5, §7
// InvalidArgument for minutes not in {3,5,10}).
func (c *Canon) SetAutoPowerOff(minutes int) error {
	if !ValidAutoPowerOffMinutes[minutes] {
		return zerr.New(zerr.KindInvalidArgument, "auto power off minutes must be 3, 5, or 10")
	}
	if err := c.require(Initialized); err != nil {
		return err
	}
	req := packet.CanonSettingAccessory(true)
	req[8] = byte(minutes)
	resp, err := c.exchange(req)
	if err != nil {
		return c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdSettingAccessory {
		return c.ackMismatch()
	}
	return nil
}

// Reboot sends the Reboot command (§4.5 reboot()).
func (c *Canon) Reboot() error {
	if err := c.require(Initialized); err != nil {
		return err
	}
	req := packet.CanonReboot()
	resp, err := c.exchange(req)
	if err != nil {
		return c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdReboot {
		return c.ackMismatch()
	}
	return nil
}

// Print implements §4.5 print(): status check, advisory settings read,
// PrintReady, chunked transfer at 990-byte chunks.
func (c *Canon) Print(jpeg []byte, copies int) error {
	if err := c.require(Initialized); err != nil {
		return err
	}
	if copies <= 0 {
		return zerr.New(zerr.KindInvalidArgument, "copies must be >= 1")
	}

	st, err := c.Status()
	if err != nil {
		return err
	}
	if st.Err != nil {
		return st.Err
	}
	if st.BatteryPercent < c.timing.MinBattery {
		return zerr.New(zerr.KindBatteryTooLow, "battery at print time")
	}

	// Advisory settings read; its result is not used for gating.
	_, _ = c.Settings()

	req := packet.CanonPrintReady(uint32(len(jpeg)), packet.CanonModeNormal)
	resp, err := c.exchange(req)
	if err != nil {
		return c.fail(err)
	}
	parsed, err := packet.ParseCanonResponse(resp)
	if err != nil {
		return c.protocolMismatch(err)
	}
	if parsed.Command != packet.CanonCmdPrintReady {
		return c.ackMismatch()
	}
	if parsed.ErrorCode != 0 {
		if mapped := zerr.FromCanonCode(parsed.ErrorCode); mapped != nil {
			return mapped
		}
	}

	c.set(Printing)
	c.disconnectTimer.Stop()
	if err := chunkedTransfer(c.transport, jpeg, c.timing.ChunkSize, c.timing.ChunkDelay); err != nil {
		return c.fail(err)
	}

	c.set(Initialized)
	c.disconnectTimer.Reset()
	c.log.WithField("bytes", len(jpeg)).Info("print transfer complete")
	return nil
}

// Close releases the transport and stops the auto-disconnect timer.
func (c *Canon) Close() error {
	c.disconnectTimer.Stop()
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.set(Disconnected)
	return err
}

// Tick lets a host without a convenient timer drive the auto-disconnect
// check periodically (§9 "Timer for auto-disconnect").
func (c *Canon) Tick(now time.Time) {
	c.disconnectTimer.Tick(now)
}

func (c *Canon) onAutoDisconnect() {
	c.log.Debug("auto-disconnect timer fired")
	c.Close()
}

func (c *Canon) exchange(req [packet.Size]byte) ([]byte, error) {
	return exchange(c.transport, c.log, req, c.timing.CommandTimeout)
}

func (c *Canon) fail(err error) error {
	c.set(Failed)
	c.disconnectTimer.Stop()
	if c.transport != nil {
		c.transport.Close()
	}
	c.log.WithError(err).Warn("session failed")
	return err
}

func (c *Canon) protocolMismatch(err error) error {
	return c.fail(zerr.Wrap(zerr.KindProtocolMismatch, "canon response", err))
}

func (c *Canon) ackMismatch() error {
	return c.protocolMismatch(zerr.New(zerr.KindProtocolMismatch, "ack command mismatch"))
}
