package scpi

// System groups the common-command and :SYSTem vocabulary.
type System struct {
	DeviceID         Query // *IDN?
	InstalledOptions Query // *OPT?
	Reset            Bare  // *RST
	SelfTest         Query // *TST?
	Date             Control
	Time             Control
	Wait             Bare // *WAI
}

func NewSystem() System {
	return System{
		DeviceID:         NewQuery("*IDN"),
		InstalledOptions: NewQuery("*OPT"),
		Reset:            NewBare("*RST"),
		SelfTest:         NewQuery("*TST"),
		Date:             NewControl(":SYSTem:DATE"), // <Year>,<Month>,<Day>
		Time:             NewControl(":SYSTem:TIME"), // <Hour 00 to 23>,<Minute>,<Second 00 to 59>
		Wait:             NewBare("*WAI"),
	}
}

// Display groups the :DISPlay vocabulary.
type Display struct {
	State      Control // 1/0/ON/OFF
	Brightness Control // 0 to 100 or MAX/MIN/DEFault
	Type       Control // 0 to 1 or MAX/MIN/DEFault
	View       Control // NUMeric, TCHart, METer, STATistics, HISTogram
}

func NewDisplay() Display {
	return Display{
		State:      NewControl(":DISPlay:STATe"),
		Brightness: NewControl(":DISPlay:BACKlight"),
		Type:       NewControl(":DISPlay:TYPe"),
		View:       NewControl(":DISPlay:VIEW"),
	}
}

// Measure groups the measurement and trigger vocabulary.
type Measure struct {
	Format     Control // FIX/FLOAT
	Continuous Control // 0/1/OFF/ON

	Read        Query // :READ?
	Fetch       Query // :FETCh?
	SampleCount Control
	Last        Control
	DCVoltage   Control
	Speed       Control // NPLC value or SLOW/MEDium/FAST
	Temperature Query

	ApertureControl Control // 1/0/ON/OFF
	ApertureTime    Control // integral time in seconds or MAX/MIN/DEFault

	VoltageRange     Control
	VoltageRangeAuto Control
	VoltageDigits    Control // 4 to 8
	ImpedanceAuto    Control

	TriggerSource    Control // IMMediate/EXTernal/BUS
	TriggerDelay     Control // 0 to 9.999 s
	TriggerDelayAuto Control

	Immediate Bare // :INITiate:IMMediate
	Abort     Bare // :ABORt
}

func NewMeasure() Measure {
	return Measure{
		Format:     NewControl(":SYSTem:COMMunicate:FORMat"),
		Continuous: NewControl(":INITiate:CONTinuous"),

		Read:        NewQuery(":READ"),
		Fetch:       NewQuery(":FETCh"),
		SampleCount: NewControl(":SAMPle:COUNt"),
		Last:        NewControl(":DATA:LAST"),
		DCVoltage:   NewControl(":MEASure:VOLTage:DC"),
		Speed:       NewControl(":SENSe:VOLTage:DC:NPLCycles"),
		Temperature: NewQuery(":MEASure:TEMPerature"),

		ApertureControl: NewControl(":SENSe:VOLTage:DC:APERture:ENABled"),
		ApertureTime:    NewControl(":SENSe:VOLTage:DC:APERture"),

		VoltageRange:     NewControl(":SENSe:VOLTage:DC:RANGe"),
		VoltageRangeAuto: NewControl(":SENSe:VOLTage:DC:RANGe:AUTO"),
		VoltageDigits:    NewControl(":SENSe:VOLTage:DIGits"),
		ImpedanceAuto:    NewControl(":SENSe:VOLTage:DC:IMPedance:AUTO"),

		TriggerSource:    NewControl(":TRIGGER:SOURCE"),
		TriggerDelay:     NewControl(":TRIGger:DELay"),
		TriggerDelayAuto: NewControl(":TRIGger:DELay:AUTO"),

		Immediate: NewBare(":INITiate:IMMediate"),
		Abort:     NewBare(":ABORt"),
	}
}

// ExternalIO groups the :IO vocabulary for the digital output lines.
type ExternalIO struct {
	Mode   Query
	Input  Query
	Output Control // output data 0 to 2047
}

func NewExternalIO() ExternalIO {
	return ExternalIO{
		Mode:   NewQuery(":IO:MODE"),
		Input:  NewQuery(":IO:INPut"),
		Output: NewControl(":IO:OUTPut"),
	}
}

// SetOutput returns the command driving the 11 digital output lines to the
// given pattern.
func (x ExternalIO) SetOutput(pattern int) string {
	return x.Output.SetInt(pattern)
}

// Panel groups the front-panel save/recall commands.
type Panel struct {
	SavePanel Control // *SAV
	LoadPanel Control // *RCL
}

func NewPanel() Panel {
	return Panel{
		SavePanel: NewControl("*SAV"),
		LoadPanel: NewControl("*RCL"),
	}
}

// Load returns the command recalling the given panel number.
func (p Panel) Load(no int) string {
	return p.LoadPanel.SetInt(no)
}

// Save returns the command saving to the given panel number.
func (p Panel) Save(no int) string {
	return p.SavePanel.SetInt(no)
}
