// Package metadata reads filesystem and EXIF attributes of image files.
package metadata

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/models"
)

// exifTimeLayout is the EXIF 2.2 date/time format. Values carry no zone.
const exifTimeLayout = "2006:01:02 15:04:05"

// Extractor builds FileAttributes for input files.
type Extractor struct {
	logger *slog.Logger
	loc    *time.Location
}

// NewExtractor creates an Extractor. EXIF timestamps are interpreted in the
// local time zone.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, loc: time.Local}
}

// Extract reads the attributes of the file at path. Filesystem errors are
// returned; EXIF errors are logged and leave the filesystem values in place.
func (e *Extractor) Extract(path string) (*models.FileAttributes, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: stat %s: %w", path, err)
	}

	attrs := &models.FileAttributes{
		Path:        path,
		DisplayName: filepath.Base(path),
		MIMEType:    DetectMIME(path),
		Created:     creationTime(ts),
		Modified:    ts.ModTime(),
	}

	if attrs.MIMEType != MIMEJPEG {
		return attrs, nil
	}
	if err := e.applyExif(attrs); err != nil {
		var perr *apperr.MetadataParseError
		if errors.As(err, &perr) {
			e.logger.Debug("metadata: exif ignored",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return attrs, nil
		}
		return nil, err
	}
	return attrs, nil
}

// creationTime prefers birth time, then inode change time, then mtime.
func creationTime(ts times.Timespec) time.Time {
	if ts.HasBirthTime() {
		return ts.BirthTime()
	}
	if ts.HasChangeTime() {
		return ts.ChangeTime()
	}
	return ts.ModTime()
}

func (e *Extractor) applyExif(attrs *models.FileAttributes) error {
	f, err := os.Open(attrs.Path)
	if err != nil {
		return fmt.Errorf("metadata: open %s: %w", attrs.Path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return &apperr.MetadataParseError{Path: attrs.Path, Err: err}
	}

	if t, ok := e.exifTime(x, exif.DateTimeOriginal); ok {
		attrs.Created = t
	}
	if t, ok := e.exifTime(x, exif.DateTime); ok {
		attrs.Modified = t
	}

	lat, latOK := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N")
	lng, lngOK := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E")
	attrs.Altitude = altitude(x)
	if latOK && lngOK {
		attrs.Location = &models.Geolocation{
			Latitude:  lat,
			Longitude: lng,
			Altitude:  attrs.Altitude,
		}
	}
	return nil
}

func (e *Extractor) exifTime(x *exif.Exif, field exif.FieldName) (time.Time, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return time.Time{}, false
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(s), e.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// coordinate reads a DMS rational triple and its hemisphere reference.
// Both must be present.
func coordinate(x *exif.Exif, field, refField exif.FieldName, positive string) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}
	refTag, err := x.Get(refField)
	if err != nil {
		return 0, false
	}
	ref, err := refTag.StringVal()
	if err != nil {
		return 0, false
	}

	var dms [3]float64
	for i := range dms {
		v, ok := rational(tag, i)
		if !ok {
			return 0, false
		}
		dms[i] = v
	}
	negate := strings.TrimSpace(ref) != positive
	return ToDecimalDegrees(negate, dms[0], dms[1], dms[2]), true
}

func altitude(x *exif.Exif) *float64 {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return nil
	}
	v, ok := rational(tag, 0)
	if !ok {
		return nil
	}
	// GPSAltitudeRef 1 means below sea level.
	if refTag, err := x.Get(exif.GPSAltitudeRef); err == nil {
		if ref, err := refTag.Int(0); err == nil && ref == 1 {
			v = -v
		}
	}
	return &v
}

func rational(tag *tiff.Tag, i int) (float64, bool) {
	num, den, err := tag.Rat2(i)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}
