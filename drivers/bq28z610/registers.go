// Standard commands, MAC subcommands and data-flash offsets (TI SLUUA65E).

package bq28z610

const (
	// 7-bit I2C address (0x55).
	AddressDefault = 0x55

	// --- Standard data commands (word registers, LSB first) ---
	regManufacturerAccessControl = 0x00
	regTemperature               = 0x06 // 0.1 K
	regVoltage                   = 0x08 // mV
	regBatteryStatus             = 0x0A
	regCurrent                   = 0x0C // mA, signed
	regRemainingCapacity         = 0x10 // mAh
	regFullChargeCapacity        = 0x12 // mAh
	regAverageCurrent            = 0x14 // mA, signed
	regCycleCount                = 0x2A
	regRelativeStateOfCharge     = 0x2C // %
	regStateOfHealth             = 0x2E // %
	regChargingVoltage           = 0x30 // mV
	regChargingCurrent           = 0x32 // mA
	regDesignCapacity            = 0x3C // mAh

	// Block protocol registers.
	regAltManufacturerAccess = 0x3E // 0x3E/0x3F
	regMACData               = 0x40 // 0x40..0x5F
	regMACDataChecksum       = 0x60 // 0x60 checksum, 0x61 length
)

// MAC subcommands written to AltManufacturerAccess().
const (
	MACDeviceType             uint16 = 0x0001
	MACFirmwareVersion        uint16 = 0x0002
	MACHardwareVersion        uint16 = 0x0003
	MACChemicalID             uint16 = 0x0006
	MACDeviceReset            uint16 = 0x0012
	MACChargeFET              uint16 = 0x001F
	MACDischargeFET           uint16 = 0x0020
	MACGaugeEnable            uint16 = 0x0021
	MACFETControl             uint16 = 0x0022
	MACLifetimeDataReset      uint16 = 0x0028
	MACPermanentFailDataReset uint16 = 0x0029
	MACSealDevice             uint16 = 0x0030
	MACSafetyAlert            uint16 = 0x0050
	MACSafetyStatus           uint16 = 0x0051
	MACPFAlert                uint16 = 0x0052
	MACPFStatus               uint16 = 0x0053
	MACOperationStatus        uint16 = 0x0054
	MACChargingStatus         uint16 = 0x0055
	MACGaugingStatus          uint16 = 0x0056
	MACManufacturingStatus    uint16 = 0x0057
	MACDAStatus1              uint16 = 0x0071
	MACDAStatus2              uint16 = 0x0072
	MACITStatus1              uint16 = 0x0073
	MACITStatus2              uint16 = 0x0074
	MACITStatus3              uint16 = 0x0075
)

// Data-flash window and named offsets.
const (
	DataFlashMin uint16 = 0x4000
	DataFlashMax uint16 = 0x5FFF

	DFManufacturerName       uint16 = 0x406B // S21
	DFDeviceName             uint16 = 0x4080 // S21
	DFDeviceChemistry        uint16 = 0x4095 // S5
	DFCell0RaFlag            uint16 = 0x4100 // H2
	DFCell1RaFlag            uint16 = 0x4140 // H2
	DFXCell0RaFlag           uint16 = 0x4180 // H2
	DFXCell1RaFlag           uint16 = 0x41C0 // H2
	DFQmaxCell1              uint16 = 0x4206 // I2
	DFQmaxCell2              uint16 = 0x4208 // I2
	DFQmaxPack               uint16 = 0x420A // I2
	DFUpdateStatus           uint16 = 0x420E // H1
	DFCycleCount             uint16 = 0x4240 // U2
	DFFETOptions             uint16 = 0x4600 // H1
	DFDesignCapacityMAh      uint16 = 0x462A // I2
	DFDesignCapacityCWh      uint16 = 0x462C // I2
	DFSOCFlagConfigA         uint16 = 0x4632 // H2
	DFTCSetRSOCThreshold     uint16 = 0x464B // U1
	DFTCClearRSOCThreshold   uint16 = 0x464C // U1
	DFChargeTermTaperCurrent uint16 = 0x4693 // I2
	DFDAConfiguration        uint16 = 0x469B // H1
	DFOCCThreshold           uint16 = 0x46C9 // I2
	DFOTCThreshold           uint16 = 0x46D8 // I2, 0.1 °C
	DFOTCRecovery            uint16 = 0x46DB // I2, 0.1 °C
)

// Block protocol frame geometry.
const (
	FrameSize       = 36 // addr(2) + payload(32) + checksum + length
	PayloadMax      = 32
	addrSize        = 2
	serviceSize     = 4 // addr(2) + checksum + length
	dataIndex       = 2
	checksumIndex   = 34
	lengthIndex     = 35
	chkLenSize      = 2
	minPayloadBytes = 1
)

// Security keys shipped by TI.
const (
	DefaultUnsealKey     uint32 = 0x36720414
	DefaultFullAccessKey uint32 = 0xFFFFFFFF
)
