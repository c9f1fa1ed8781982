package mzml

// Subset of the mzML schema needed for display. Element names are matched without
// namespace so both plain and indexed mzML documents decode.

type cvParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
	UnitName      string `xml:"unitName,attr"`
}

type cvParams []cvParam

// find returns the first parameter with the given accession.
func (ps cvParams) find(acc string) (cvParam, bool) {
	for _, p := range ps {
		if p.Accession == acc {
			return p, true
		}
	}
	return cvParam{}, false
}

func (ps cvParams) has(acc string) bool {
	_, ok := ps.find(acc)
	return ok
}

// spectrumHeader is decoded during the indexing pass; binary arrays are skipped.
type spectrumHeader struct {
	Index    string   `xml:"index,attr"`
	ID       string   `xml:"id,attr"`
	CvParams cvParams `xml:"cvParam"`
	Scans    []struct {
		CvParams cvParams `xml:"cvParam"`
	} `xml:"scanList>scan"`
}

type xmlSpectrum struct {
	CvParams   cvParams   `xml:"cvParam"`
	Scans      []xmlScan  `xml:"scanList>scan"`
	Precursors []xmlPrec  `xml:"precursorList>precursor"`
	Arrays     []xmlArray `xml:"binaryDataArrayList>binaryDataArray"`
}

type xmlScan struct {
	CvParams    cvParams `xml:"cvParam"`
	ScanWindows []struct {
		CvParams cvParams `xml:"cvParam"`
	} `xml:"scanWindowList>scanWindow"`
}

type xmlPrec struct {
	SelectedIons []struct {
		CvParams cvParams `xml:"cvParam"`
	} `xml:"selectedIonList>selectedIon"`
}

type xmlArray struct {
	CvParams cvParams `xml:"cvParam"`
	Binary   string   `xml:"binary"`
}

type chromatogramHeader struct {
	ID       string   `xml:"id,attr"`
	CvParams cvParams `xml:"cvParam"`
}

type xmlChromatogram struct {
	Arrays []xmlArray `xml:"binaryDataArrayList>binaryDataArray"`
}
