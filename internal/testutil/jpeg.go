package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Rational is an unsigned EXIF rational.
type Rational struct {
	Num, Den uint32
}

// DMS is a degrees/minutes/seconds triple.
type DMS [3]Rational

// ExifFixture describes the tags written into a synthetic JPEG.
// Empty fields are omitted from the file.
type ExifFixture struct {
	DateTime         string // IFD0 DateTime, "2006:01:02 15:04:05"
	DateTimeOriginal string // Exif IFD DateTimeOriginal
	Latitude         *DMS
	LatitudeRef      string
	Longitude        *DMS
	LongitudeRef     string
	Altitude         *Rational
	AltitudeBelowSea bool
}

const (
	typeByte     = 1
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// WriteJPEG writes a minimal JPEG (SOI, APP1 Exif, EOI) carrying the
// fixture's tags to dir/name and returns its path.
func WriteJPEG(t *testing.T, dir, name string, fx ExifFixture) string {
	t.Helper()
	tiffData := buildTIFF(fx)

	var buf []byte
	buf = append(buf, 0xFF, 0xD8)
	app1 := append([]byte("Exif\x00\x00"), tiffData...)
	buf = append(buf, 0xFF, 0xE1)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(app1)+2))
	buf = append(buf, app1...)
	buf = append(buf, 0xFF, 0xD9)

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf, 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
	return p
}

func buildTIFF(fx ExifFixture) []byte {
	var ifd0, exifIFD, gps []ifdEntry

	if fx.DateTime != "" {
		ifd0 = append(ifd0, asciiEntry(0x0132, fx.DateTime))
	}
	if fx.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, fx.DateTimeOriginal))
	}
	if fx.LatitudeRef != "" {
		gps = append(gps, asciiEntry(0x0001, fx.LatitudeRef))
	}
	if fx.Latitude != nil {
		gps = append(gps, rationalEntry(0x0002, fx.Latitude[:]...))
	}
	if fx.LongitudeRef != "" {
		gps = append(gps, asciiEntry(0x0003, fx.LongitudeRef))
	}
	if fx.Longitude != nil {
		gps = append(gps, rationalEntry(0x0004, fx.Longitude[:]...))
	}
	if fx.Altitude != nil {
		ref := byte(0)
		if fx.AltitudeBelowSea {
			ref = 1
		}
		gps = append(gps, ifdEntry{tag: 0x0005, typ: typeByte, count: 1, data: []byte{ref}})
		gps = append(gps, rationalEntry(0x0006, *fx.Altitude))
	}

	// Pointer values are patched once the IFD0 size is known; their size is fixed.
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, longEntry(0x8769, 0))
	}
	if len(gps) > 0 {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}
	sortEntries(ifd0)
	sortEntries(exifIFD)
	sortEntries(gps)

	const headerLen = 8
	ifd0Off := uint32(headerLen)
	exifOff := ifd0Off + ifdSize(ifd0)
	gpsOff := exifOff
	if len(exifIFD) > 0 {
		gpsOff += ifdSize(exifIFD)
	}
	for i := range ifd0 {
		switch ifd0[i].tag {
		case 0x8769:
			ifd0[i] = longEntry(0x8769, exifOff)
		case 0x8825:
			ifd0[i] = longEntry(0x8825, gpsOff)
		}
	}

	out := []byte{'I', 'I', 42, 0}
	out = binary.LittleEndian.AppendUint32(out, ifd0Off)
	out = append(out, encodeIFD(ifd0, ifd0Off)...)
	if len(exifIFD) > 0 {
		out = append(out, encodeIFD(exifIFD, exifOff)...)
	}
	if len(gps) > 0 {
		out = append(out, encodeIFD(gps, gpsOff)...)
	}
	return out
}

func asciiEntry(tag uint16, s string) ifdEntry {
	data := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	return ifdEntry{tag: tag, typ: typeLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func rationalEntry(tag uint16, vals ...Rational) ifdEntry {
	var data []byte
	for _, r := range vals {
		data = binary.LittleEndian.AppendUint32(data, r.Num)
		data = binary.LittleEndian.AppendUint32(data, r.Den)
	}
	return ifdEntry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: data}
}

func sortEntries(es []ifdEntry) {
	sort.Slice(es, func(i, j int) bool { return es[i].tag < es[j].tag })
}

func padded(n int) int {
	return n + n%2
}

func ifdSize(es []ifdEntry) uint32 {
	size := 2 + 12*len(es) + 4
	for _, e := range es {
		if len(e.data) > 4 {
			size += padded(len(e.data))
		}
	}
	return uint32(size)
}

func encodeIFD(es []ifdEntry, offset uint32) []byte {
	var out, extra []byte
	dataOff := offset + uint32(2+12*len(es)+4)

	out = binary.LittleEndian.AppendUint16(out, uint16(len(es)))
	for _, e := range es {
		out = binary.LittleEndian.AppendUint16(out, e.tag)
		out = binary.LittleEndian.AppendUint16(out, e.typ)
		out = binary.LittleEndian.AppendUint32(out, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			out = append(out, v...)
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, dataOff+uint32(len(extra)))
		extra = append(extra, e.data...)
		if len(e.data)%2 == 1 {
			extra = append(extra, 0)
		}
	}
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, extra...)
}

// Tokyo is the Shinjuku sample location used across tests:
// 35°41'11.6"N 139°41'30.7"E.
func Tokyo() (lat, lng DMS) {
	lat = DMS{{35, 1}, {41, 1}, {116, 10}}
	lng = DMS{{139, 1}, {41, 1}, {307, 10}}
	return lat, lng
}
