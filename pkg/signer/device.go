package signer

// DeviceType classifies where the signing keys actually live.
type DeviceType string

const (
	DeviceTypeHardware     DeviceType = "hardware"
	DeviceTypeSoftware     DeviceType = "software"
	DeviceTypeWatchOnly    DeviceType = "watch-only"
	DeviceTypeGreenBackend DeviceType = "green-backend"
)

// LiquidSupportLevel describes how much of the Liquid protocol a device
// can handle.
type LiquidSupportLevel int

const (
	LiquidSupportNone LiquidSupportLevel = iota
	LiquidSupportLite
	LiquidSupportFull
)

// AEProtocolSupportLevel describes support for the anti-exfil signing
// protocol.
type AEProtocolSupportLevel int

const (
	AESupportNone AEProtocolSupportLevel = iota
	AESupportOptional
	AESupportRequired
)

// Device is the capability record of the signing device backing a login.
type Device struct {
	Type                     DeviceType             `json:"device_type"`
	Name                     string                 `json:"name,omitempty"`
	SupportsLowR             bool                   `json:"supports_low_r"`
	SupportsArbitraryScripts bool                   `json:"supports_arbitrary_scripts"`
	SupportsHostUnblinding   bool                   `json:"supports_host_unblinding"`
	SupportsExternalBlinding bool                   `json:"supports_external_blinding"`
	LiquidSupport            LiquidSupportLevel     `json:"supports_liquid"`
	AEProtocolSupport        AEProtocolSupportLevel `json:"supports_ae_protocol"`
}

func greenBackendDevice() Device {
	return Device{
		Type:                     DeviceTypeGreenBackend,
		SupportsLowR:             true,
		SupportsArbitraryScripts: true,
		SupportsHostUnblinding:   false,
		SupportsExternalBlinding: true,
		LiquidSupport:            LiquidSupportLite,
		AEProtocolSupport:        AESupportNone,
	}
}

func watchOnlyDevice() Device {
	return Device{
		Type:                     DeviceTypeWatchOnly,
		SupportsLowR:             true,
		SupportsArbitraryScripts: true,
		SupportsHostUnblinding:   true,
		SupportsExternalBlinding: true,
		LiquidSupport:            LiquidSupportLite,
		AEProtocolSupport:        AESupportNone,
	}
}

func softwareDevice() Device {
	return Device{
		Type:                     DeviceTypeSoftware,
		SupportsLowR:             true,
		SupportsArbitraryScripts: true,
		SupportsHostUnblinding:   true,
		SupportsExternalBlinding: true,
		LiquidSupport:            LiquidSupportLite,
		AEProtocolSupport:        AESupportNone,
	}
}

// resolveDevice returns the canonical device descriptor for the given
// explicit hardware device and normalized credentials. An explicit device
// and local credentials are mutually exclusive; without an explicit
// device the type is inferred from the credential variant.
func resolveDevice(hwDevice *Device, credentials *Credentials) (Device, error) {
	var device Device
	switch {
	case hwDevice != nil:
		if !credentials.IsEmpty() {
			return Device{}, ErrDeviceWithCredentials
		}
		device = *hwDevice
		if device.Type == "" {
			device.Type = DeviceTypeHardware
		}
	case credentials.IsWatchOnly():
		device = watchOnlyDevice()
	case credentials.HasSeed():
		device = softwareDevice()
	default:
		return Device{}, ErrNullCredentials
	}

	switch device.Type {
	case DeviceTypeHardware:
		if device.Name == "" {
			return Device{}, ErrDeviceName
		}
	case DeviceTypeGreenBackend:
		// Don't allow overriding Green backend settings
		device = greenBackendDevice()
	case DeviceTypeSoftware, DeviceTypeWatchOnly:
	default:
		return Device{}, ErrUnknownDeviceType
	}
	return device, nil
}
