package config

import "gopkg.in/ini.v1"

// loadOptions mirrors the teacher's defaultLoadOption: unrecognizable
// lines in an authority file are skipped rather than rejected, since
// this file is hand-edited operational config, not a wire format.
var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines: true,
}

func loadINI(path string) (*ini.File, error) {
	return ini.LoadSources(loadOptions, path)
}
