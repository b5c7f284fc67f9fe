package joint

import (
	"os"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/policy"
)

// Tables loads the embedded materials merged with an optional site file,
// and the built-in standard plus any program standard files.
func Tables(materialsFile string, standardFiles []string) (*material.Table, *policy.Registry, error) {
	tbl, err := material.Default()
	if err != nil {
		return nil, nil, err
	}
	if materialsFile != "" {
		site, err := material.LoadFile(materialsFile)
		if err != nil {
			return nil, nil, err
		}
		tbl = tbl.Merge(site)
	}

	reg := policy.NewRegistry()
	for _, path := range standardFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "open standard file")
		}
		_, err = reg.Load(f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
	}
	return tbl, reg, nil
}
