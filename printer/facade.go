// Package printer implements the Facade (§4.6): a single, polymorphic
// entry point over the Kodak and Canon session state machines, plus the
// Config/Info types construction and inspection rely on.
package printer

import (
	"time"

	"github.com/sirupsen/logrus"

	"zinkdriver/imaging"
	"zinkdriver/session"
	"zinkdriver/transport"
	"zinkdriver/zerr"
)

// Facade is polymorphic over {Kodak(Standard|Slim), CanonIvy2} (§4.6). It
// holds exactly one of kodak or canon, selected by cfg.Family.
type Facade struct {
	cfg Config
	log logrus.FieldLogger

	kodak *session.Kodak
	canon *session.Canon
}

// New constructs a Facade from cfg. The transport is not opened until
// Open. log may be nil, in which case logrus.StandardLogger() is used.
func New(cfg Config, dialer transport.Dialer, log logrus.FieldLogger) *Facade {
	if log == nil {
		log = logrus.StandardLogger()
	}
	f := &Facade{cfg: cfg, log: log}

	addr := transport.Address(cfg.Address)
	switch cfg.Family {
	case FamilyKodak:
		timing := session.DefaultKodakTiming
		timing.CommandTimeout = time.Duration(cfg.CommandTimeoutMs) * time.Millisecond
		timing.ChunkDelay = time.Duration(cfg.ChunkDelayMs) * time.Millisecond
		timing.MinBattery = cfg.MinBattery
		f.kodak = session.NewKodak(dialer, addr, cfg.Channel, timing, log)
	case FamilyCanon:
		timing := session.DefaultCanonTiming
		timing.CommandTimeout = time.Duration(cfg.CommandTimeoutMs) * time.Millisecond
		timing.ChunkDelay = time.Duration(cfg.ChunkDelayMs) * time.Millisecond
		timing.AutoDisconnect = time.Duration(cfg.AutoDisconnectS) * time.Second
		timing.MinBattery = cfg.MinBattery
		f.canon = session.NewCanon(dialer, addr, cfg.Channel, timing, log)
	}
	return f
}

// Open establishes the transport and brings the session to Initialized
// (§4.6 open()).
func (f *Facade) Open() error {
	if f.kodak != nil {
		if err := f.kodak.Connect(); err != nil {
			return err
		}
		return f.kodak.Initialize(f.cfg.IsSlim)
	}
	if err := f.canon.Connect(); err != nil {
		return err
	}
	return f.canon.StartSession()
}

// Close releases the transport (§4.6 close()). Idempotent.
func (f *Facade) Close() error {
	if f.kodak != nil {
		return f.kodak.Close()
	}
	return f.canon.Close()
}

// Status returns the normalized printer status (§4.6 status()).
func (f *Facade) Status() (session.Status, error) {
	if f.kodak != nil {
		return f.kodak.Status()
	}
	return f.canon.Status()
}

// Print validates/prepares jpeg for the active family and transfers it
// (§4.6 print()). autoCrop only affects Canon's image preparation (§4.3,
// §6); Kodak ignores it and uses the bytes verbatim.
func (f *Facade) Print(jpeg []byte, copies int, autoCrop bool) error {
	if copies <= 0 {
		return zerr.New(zerr.KindInvalidArgument, "copies must be >= 1")
	}
	if f.kodak != nil {
		if err := imaging.ValidateKodak(jpeg); err != nil {
			return err
		}
		return f.kodak.Print(jpeg, uint8(copies))
	}

	prepared, err := imaging.PrepareCanon(jpeg, autoCrop)
	if err != nil {
		return err
	}
	return f.canon.Print(prepared, copies)
}

// Info returns the static descriptor (§4.6 info()).
func (f *Facade) Info() Info {
	if f.kodak != nil {
		return kodakInfo(f.cfg.IsSlim)
	}
	return canonInfo()
}

// PrintCount reports the device's print counter. Requires
// info().Capabilities.Has(CapPrintCount); Canon does not support it.
func (f *Facade) PrintCount() (int, error) {
	if !f.Info().Capabilities.Has(CapPrintCount) {
		return 0, zerr.New(zerr.KindInvalidArgument, "print count not supported by this family")
	}
	return f.kodak.PrintCount()
}

// AutoPowerOff reads the configured auto-power-off minutes. Requires
// info().Capabilities.Has(CapAutoPowerOff), and only the Kodak family
// supports the read: Canon advertises CapAutoPowerOff for its setter but
// this method returns InvalidArgument for it.
func (f *Facade) AutoPowerOff() (int, error) {
	if !f.Info().Capabilities.Has(CapAutoPowerOff) {
		return 0, zerr.New(zerr.KindInvalidArgument, "auto power off not supported by this family")
	}
	if f.kodak != nil {
		return f.kodak.AutoPowerOff()
	}
	return 0, zerr.New(zerr.KindInvalidArgument, "canon exposes set_auto_power_off but not a get")
}

// SetAutoPowerOff writes the auto-power-off minutes (Canon only, §4.5).
func (f *Facade) SetAutoPowerOff(minutes int) error {
	if f.canon == nil {
		return zerr.New(zerr.KindInvalidArgument, "set_auto_power_off is a Canon-only extension")
	}
	return f.canon.SetAutoPowerOff(minutes)
}

// Reboot restarts the device (Canon only, §4.5).
func (f *Facade) Reboot() error {
	if !f.Info().Capabilities.Has(CapReboot) {
		return zerr.New(zerr.KindInvalidArgument, "reboot not supported by this family")
	}
	return f.canon.Reboot()
}
