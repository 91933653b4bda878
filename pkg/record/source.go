package record

import "fmt"

// New opens path for reading according to the declared format. The engine
// never infers the format from file content; the caller supplies it.
func New(path string, format Format) (Source, error) {
	switch format {
	case FormatCloudTrail:
		return newCloudTrailSource(path)
	case FormatFlatJSON:
		return newFlatJSONSource(path)
	default:
		return nil, fmt.Errorf("record: unknown format %q", format)
	}
}
