package models

// Sensor bits reported in ScannerStatus.Sensors.
const (
	SensorFrontPaper uint32 = 1 << iota
	SensorBackPaper
	SensorJam
	SensorCoverOpen
	SensorPrintHead
)

// ScannerStatus is a point-in-time snapshot of the paper path sensors.
type ScannerStatus struct {
	FrontSensor bool
	BackSensor  bool
	Jammed      bool
	CoverOpen   bool
	Sensors     uint32
}

// NewScannerStatus builds a status from a raw sensor bitfield.
func NewScannerStatus(sensors uint32) ScannerStatus {
	return ScannerStatus{
		FrontSensor: sensors&SensorFrontPaper != 0,
		BackSensor:  sensors&SensorBackPaper != 0,
		Jammed:      sensors&SensorJam != 0,
		CoverOpen:   sensors&SensorCoverOpen != 0,
		Sensors:     sensors,
	}
}

func (s ScannerStatus) PaperPresent() bool {
	return s.FrontSensor || s.BackSensor
}

func (s ScannerStatus) PaperAbsent() bool {
	return !s.PaperPresent()
}

// Faulted reports a condition that must stop the paper path.
func (s ScannerStatus) Faulted() bool {
	return s.Jammed || s.CoverOpen
}

// PaperPosition is a location in the paper path the driver can move a sheet to.
type PaperPosition string

const (
	// PositionInternal parks the sheet inside the device, ready to scan or print.
	PositionInternal PaperPosition = "internal"
	// PositionFront holds the sheet at the front slot so the voter can review it.
	PositionFront PaperPosition = "front"
)

// EjectDirection is the side a sheet leaves the device from.
type EjectDirection string

const (
	// EjectRear drops the sheet into the ballot box.
	EjectRear EjectDirection = "rear"
	// EjectFront returns the sheet to the voter.
	EjectFront EjectDirection = "front"
)
