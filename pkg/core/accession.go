package core

// Accession is a PSI-MS controlled vocabulary code such as "MS:1000504".
type Accession string

// Controlled vocabulary terms the readers interpret directly.
const (
	AccMSLevel           Accession = "MS:1000511"
	AccScanStartTime     Accession = "MS:1000016"
	AccCentroidSpectrum  Accession = "MS:1000127"
	AccProfileSpectrum   Accession = "MS:1000128"
	AccPositiveScan      Accession = "MS:1000130"
	AccTotalIonCurrent   Accession = "MS:1000285"
	AccBasePeakMZ        Accession = "MS:1000504"
	AccBasePeakIntensity Accession = "MS:1000505"
	AccHighestObservedMZ Accession = "MS:1000527"
	AccLowestObservedMZ  Accession = "MS:1000528"
	AccFilterString      Accession = "MS:1000512"
	AccPresetScanConfig  Accession = "MS:1000616"
	AccIonInjectionTime  Accession = "MS:1000927"
	AccScanWindowLower   Accession = "MS:1000501"
	AccScanWindowUpper   Accession = "MS:1000500"
	AccFAIMSCompVoltage  Accession = "MS:1001581"
	AccSelectedIonMZ     Accession = "MS:1000744"
	AccPeakIntensity     Accession = "MS:1000042"
	AccChargeState       Accession = "MS:1000041"
	AccMZArray           Accession = "MS:1000514"
	AccIntensityArray    Accession = "MS:1000515"
	AccTimeArray         Accession = "MS:1000595"
	AccFloat32           Accession = "MS:1000521"
	AccFloat64           Accession = "MS:1000523"
	AccZlibCompression   Accession = "MS:1000574"
	AccNoCompression     Accession = "MS:1000576"
	AccTICChromatogram   Accession = "MS:1000235"
	UnitMinute           Accession = "UO:0000031"
	UnitSecond           Accession = "UO:0000010"
	UnitMillisecond      Accession = "UO:0000028"
)

// AccessionInfo pairs an accession with the label shown in the spectrum info annotation.
type AccessionInfo struct {
	Code Accession
	Name string
}

// AccessionTable lists, in display order, the metadata fields annotated on a spectrum.
var AccessionTable = []AccessionInfo{
	{AccPositiveScan, "positive scan"},
	{AccProfileSpectrum, "profile spectrum"},
	{AccBasePeakMZ, "base peak m/z"},
	{AccBasePeakIntensity, "base peak intensity"},
	{AccTotalIonCurrent, "total ion current"},
	{AccLowestObservedMZ, "lowest observed m/z"},
	{AccHighestObservedMZ, "highest observed m/z"},
	{AccFilterString, "filter string"},
	{AccPresetScanConfig, "preset scan configuration"},
	{AccIonInjectionTime, "ion injection time"},
	{AccScanWindowLower, "scan window lower limit"},
	{AccScanWindowUpper, "scan window upper limit"},
	{AccFAIMSCompVoltage, "FAIMS compensation voltage"},
}
