package bq28z610

// Flag names one bit of a status word or data-flash register.
type Flag struct {
	Bit     uint8
	Name    string
	Caption string
}

// In reports whether the flag's bit is set in v.
func (f Flag) In(v uint32) bool { return v&(1<<f.Bit) != 0 }

type FlagState struct {
	Flag
	Set bool
}

// Decode evaluates every flag of table against v, in table order.
func Decode(v uint32, table []Flag) []FlagState {
	out := make([]FlagState, len(table))
	for i, f := range table {
		out[i] = FlagState{Flag: f, Set: f.In(v)}
	}
	return out
}

// Bits used by the service procedures.
const (
	bsTDA = 11 // BatteryStatus
	bsTCA = 14

	osPF = 12 // OperationStatus

	msCHGTest = 1 // ManufacturingStatus
	msDSGTest = 2
	msFETEn   = 4

	fetOptCHGFET = 5 // FET Options

	socTCSetV      = 4 // SOC Flag Config A
	socTCClearV    = 5
	socTCSetRSOC   = 6
	socTCClearRSOC = 7
	updateLearning = 0x04 // Gas Gauging Update Status
	raTableUsed    = 0xFF55
	raTableNotUsed = 0xFFFF
	rsocPercentMax = 100
)

var BatteryStatusFlags = []Flag{
	{15, "OCA", "Overcharged Alarm"},
	{14, "TCA", "Terminate Charge Alarm"},
	{12, "OTA", "Overtemperature Alarm"},
	{11, "TDA", "Terminate Discharge Alarm"},
	{9, "RCA", "Remaining Capacity Alarm"},
	{8, "RTA", "Remaining Time Alarm"},
	{7, "INIT", "Initialization"},
	{6, "DSG", "Discharging"},
	{5, "FC", "Fully Charged"},
	{4, "FD", "Fully Discharged"},
	{3, "EC3", "Error Code"},
	{2, "EC2", "Error Code"},
	{1, "EC1", "Error Code"},
	{0, "EC0", "Error Code"},
}

var ManufacturerAccessControlFlags = []Flag{
	{14, "SEC1", "Security Mode"},
	{13, "SEC0", "Security Mode"},
	{12, "AUTHCALM", "Automatic Calibration Mode"},
	{9, "CheckSumValid", "Checksum Valid"},
	{7, "BTP_INT", "Battery Trip Point Interrupt"},
	{3, "LDMD", "Load Mode"},
	{2, "R_DIS", "Resistance Updates"},
	{1, "VOK", "Voltage OK for QMax Update"},
	{0, "QMax", "QMax Updates"},
}

// SafetyFlags covers SafetyAlert and SafetyStatus; alert-only bits carry the
// suspend/timeout variants.
var SafetyFlags = []Flag{
	{27, "UTD", "Undertemperature During Discharge"},
	{26, "UTC", "Undertemperature During Charge"},
	{21, "CTOS", "Charge Timeout Suspend"},
	{20, "CTO", "Charge Timeout"},
	{19, "PTOS", "Precharge Timeout Suspend"},
	{18, "PTO", "Precharge Timeout"},
	{13, "OTD", "Overtemperature During Discharge"},
	{12, "OTC", "Overtemperature During Charge"},
	{10, "ASCD", "Short-Circuit During Discharge"},
	{8, "ASCC", "Short-Circuit During Charge"},
	{6, "AOLD", "Overload During Discharge"},
	{4, "OCD", "Overcurrent During Discharge"},
	{2, "OCC", "Overcurrent During Charge"},
	{1, "COV", "Cell Overvoltage"},
	{0, "CUV", "Cell Undervoltage"},
}

var PFFlags = []Flag{
	{26, "DFW", "Data Flash Wearout Failure"},
	{24, "IFC", "Instruction Flash Checksum Failure"},
	{17, "DFETF", "Discharge FET Failure"},
	{16, "CFETF", "Charge FET Failure"},
	{12, "VIMR", "Voltage Imbalance At Rest Failure"},
	{11, "VIMA", "Voltage Imbalance While Active Failure"},
	{1, "SOV", "Safety Cell Overvoltage Failure"},
}

var OperationStatusFlags = []Flag{
	{29, "EMSHUT", "Emergency FET Shutdown"},
	{28, "CB", "Cell Balancing"},
	{27, "SLPCC", "CC Measurement in SLEEP mode"},
	{26, "SLPAD", "ADC Measurement in SLEEP mode"},
	{25, "SMBLCAL", "Auto-offset calibration on bus low"},
	{24, "INIT", "Initialization after full reset"},
	{23, "SLEEPM", "SLEEP mode"},
	{22, "XL", "400-kHz mode"},
	{21, "CAL_OFFSET", "Calibration Output (raw CC offset)"},
	{20, "CAL", "Calibration Output (raw ADC and CC)"},
	{19, "AUTHCALM", "Auto CC Offset Calibration"},
	{18, "AUTH", "Authentication in progress"},
	{16, "SDM", "SHUTDOWN triggered via command"},
	{15, "SLEEP", "SLEEP mode conditions met"},
	{14, "XCHG", "Charging disabled"},
	{13, "XDSG", "Discharging disabled"},
	{12, "PF", "PERMANENT FAILURE mode"},
	{11, "SS", "SAFETY mode"},
	{10, "SDV", "SHUTDOWN triggered via low pack voltage"},
	{9, "SEC1", "Security Mode"},
	{8, "SEC0", "Security Mode"},
	{7, "BTP_INT", "Battery Trip Point Interrupt"},
	{2, "CHG", "CHG FET status"},
	{1, "DSG", "DSG FET status"},
}

var ChargingStatusFlags = []Flag{
	{15, "VCT", "Charge Termination"},
	{14, "MCHG", "Maintenance Charge"},
	{13, "SU", "Charge Suspend"},
	{12, "IN", "Charge Inhibit"},
	{11, "HV", "High Voltage Region"},
	{10, "MV", "Mid Voltage Region"},
	{9, "LV", "Low Voltage Region"},
	{8, "PV", "Precharge Voltage Region"},
	{6, "OT", "Over Temperature Region"},
	{5, "HT", "High Temperature Region"},
	{4, "STH", "Standard Temperature High Region"},
	{3, "RT", "Room Temperature Region"},
	{2, "STL", "Standard Temperature Low Region"},
	{1, "LT", "Low Temperature Region"},
	{0, "UT", "Under Temperature Region"},
}

var GaugingStatusFlags = []Flag{
	{20, "OCVFR", "Open Circuit Voltage in Flat Region"},
	{19, "LDMD", "LOAD mode"},
	{18, "RX", "Resistance Update"},
	{17, "QMax", "QMax Update"},
	{16, "VDQ", "Discharge Qualified for Learning"},
	{15, "NSFM", "Negative Scale Factor Mode"},
	{13, "SLPQMax", "QMax Update During Sleep"},
	{12, "QEN", "Impedance Track Gauging"},
	{11, "VOK", "Voltage OK for QMax Update"},
	{10, "RDIS", "Resistance Updates disabled"},
	{8, "REST", "Rest"},
	{7, "CF", "Condition Flag"},
	{6, "DSG", "Discharge/Relax"},
	{5, "EDV", "End-of-Discharge Termination Voltage"},
	{4, "BAL_EN", "Cell Balancing"},
	{3, "TC", "Terminate Charge"},
	{2, "TD", "Terminate Discharge"},
	{1, "FC", "Fully Charged"},
	{0, "FD", "Fully Discharged"},
}

var ManufacturingStatusFlags = []Flag{
	{15, "CAL_EN", "CALIBRATION mode"},
	{6, "PF_EN", "Permanent Failure mode"},
	{5, "LF_EN", "Lifetime Data Collection mode"},
	{4, "FET_EN", "All FET Action mode"},
	{3, "GAUGE_EN", "Gas Gauging mode"},
	{2, "DSG_TEST", "Discharge FET Test"},
	{1, "CHG_TEST", "Charge FET Test"},
}

var FETOptionsFlags = []Flag{
	{6, "SLEEPCHG", "CHG FET enabled during sleep"},
	{5, "CHGFET", "FET action on valid charge termination"},
	{4, "CHGIN", "FET action in CHARGE INHIBIT mode"},
	{3, "CHGSU", "FET action in CHARGE SUSPEND mode"},
	{2, "OTFET", "FET action in OVERTEMPERATURE mode"},
}

var DAConfigurationFlags = []Flag{
	{6, "CTEMP", "Cell Temperature protection source"},
	{4, "SLEEP", "SLEEP mode"},
	{3, "IN_SYSTEM_SLEEP", "In-system SLEEP mode"},
	{0, "CC0", "Cell Count"},
}

var SOCFlagConfigAFlags = []Flag{
	{11, "TCSETVCT", "TC flag set by primary charge termination"},
	{10, "FCSETVCT", "FC flag set by primary charge termination"},
	{7, "TCCLEARRSOC", "TC flag cleared by RSOC threshold"},
	{6, "TCSETRSOC", "TC flag set by RSOC threshold"},
	{5, "TCCLEARV", "TC flag cleared by cell voltage threshold"},
	{4, "TCSETV", "TC flag set by cell voltage threshold"},
	{3, "TDCLEARRSOC", "TD flag cleared by RSOC threshold"},
	{2, "TDSETRSOC", "TD flag set by RSOC threshold"},
	{1, "TDCLEARV", "TD flag cleared by cell voltage threshold"},
	{0, "TDSETV", "TD flag set by cell voltage threshold"},
}

var UpdateStatusFlags = []Flag{
	{3, "QMax_update", "QMax updated in the field"},
	{2, "Enable", "Impedance Track gauging and lifetime updating enabled"},
	{1, "Update1", "Update Status"},
	{0, "Update0", "Update Status"},
}
