package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
	// PCDCompressed binary format for pcd.
	PCDCompressed PCDType = 2
)

// ParsePCDType parses "ascii", "binary" or "binary_compressed".
func ParsePCDType(s string) (PCDType, error) {
	switch s {
	case "ascii":
		return PCDAscii, nil
	case "binary":
		return PCDBinary, nil
	case "binary_compressed":
		return PCDCompressed, nil
	default:
		return 0, errors.Errorf("unknown pcd data type %q", s)
	}
}

func (t PCDType) String() string {
	switch t {
	case PCDAscii:
		return "ascii"
	case PCDBinary:
		return "binary"
	case PCDCompressed:
		return "binary_compressed"
	default:
		return fmt.Sprintf("PCDType(%d)", int(t))
	}
}

type pcdFieldType int

const (
	pcdPointOnly   pcdFieldType = 3
	pcdPointNormal pcdFieldType = 6
)

const (
	pcdPointFields  = "x y z"
	pcdNormalFields = "x y z normal_x normal_y normal_z"
)

// ToPCD writes the cloud as a PCD v0.7 file with fields x y z.
func ToPCD(cloud *PointCloud, out io.Writer, outputType PCDType) error {
	return writePCD(cloud.vecs, nil, out, outputType)
}

// ToPCDWithNormals writes the cloud as a PCD v0.7 file with fields x y z normal_x normal_y normal_z.
func ToPCDWithNormals(cloud *PointNormalCloud, out io.Writer, outputType PCDType) error {
	return writePCD(cloud.Points.vecs, cloud.Normals.vecs, out, outputType)
}

func writePCD(points, normals []r3.Vector, out io.Writer, outputType PCDType) error {
	var err error

	if outputType == PCDCompressed {
		return errors.New("compressed PCD not yet implemented")
	}
	if outputType != PCDAscii && outputType != PCDBinary {
		return errors.Errorf("unsupported pcd data type %v", outputType)
	}

	_, err = fmt.Fprintf(out, "VERSION .7\n")
	if err != nil {
		return err
	}
	if normals == nil {
		_, err = fmt.Fprintf(out, "FIELDS "+pcdPointFields+"\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	} else {
		_, err = fmt.Fprintf(out, "FIELDS "+pcdNormalFields+"\n"+
			"SIZE 4 4 4 4 4 4\n"+
			"TYPE F F F F F F\n"+
			"COUNT 1 1 1 1 1 1\n")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n"+
		"DATA %s\n",
		len(points),
		1,
		len(points),
		outputType)
	if err != nil {
		return err
	}
	return writePCDData(points, normals, out, outputType)
}

func writePCDData(points, normals []r3.Vector, out io.Writer, pcdtype PCDType) error {
	w := bufio.NewWriter(out)
	fields := []float64{0, 0, 0}
	if normals != nil {
		fields = make([]float64, 6)
	}
	buf := make([]byte, 4*len(fields))
	for i, pos := range points {
		fields[0], fields[1], fields[2] = pos.X, pos.Y, pos.Z
		if normals != nil {
			n := normals[i]
			fields[3], fields[4], fields[5] = n.X, n.Y, n.Z
		}
		var err error
		switch pcdtype {
		case PCDBinary:
			for j, f := range fields {
				binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(float32(f)))
			}
			_, err = w.Write(buf)
		case PCDAscii:
			strs := make([]string, len(fields))
			for j, f := range fields {
				strs[j] = strconv.FormatFloat(f, 'f', 6, 64)
			}
			_, err = w.WriteString(strings.Join(strs, " ") + "\n")
		}
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

type pcdHeader struct {
	fields pcdFieldType
	size   []uint64
	width  uint64
	height uint64
	points uint64
	data   PCDType
}

const pcdCommentChar = "#"

var pcdHeaderFields = []string{"VERSION", "FIELDS", "SIZE", "TYPE", "COUNT", "WIDTH", "HEIGHT", "VIEWPOINT", "POINTS", "DATA"}

func parsePCDHeaderLine(line string, index int, header *pcdHeader) error {
	var err error
	name := pcdHeaderFields[index]
	field, value, _ := strings.Cut(line, " ")
	tokens := strings.Split(value, " ")
	if field != name {
		return errors.Errorf("line is supposed to start with %s but is %s", name, line)
	}

	switch name {
	case "VERSION":
		if value != ".7" && value != "0.7" {
			return errors.Errorf("unsupported pcd version %s", value)
		}
	case "FIELDS":
		switch value {
		case pcdPointFields:
			header.fields = pcdPointOnly
		case pcdNormalFields:
			header.fields = pcdPointNormal
		default:
			return errors.Errorf("unsupported pcd fields %s", value)
		}
	case "SIZE":
		if len(tokens) != int(header.fields) {
			return errors.New("unexpected number of fields in SIZE line")
		}
		header.size = make([]uint64, len(tokens))
		for i, token := range tokens {
			header.size[i], err = strconv.ParseUint(token, 10, 64)
			if err != nil || header.size[i] != 4 {
				return errors.Errorf("invalid SIZE field %s", token)
			}
		}
	case "TYPE":
		if len(tokens) != int(header.fields) {
			return errors.New("unexpected number of fields in TYPE line")
		}
		for _, token := range tokens {
			if token != "F" {
				return errors.Errorf("unsupported TYPE field %s", token)
			}
		}
	case "COUNT":
		if len(tokens) != int(header.fields) {
			return errors.New("unexpected number of fields in COUNT line")
		}
	case "WIDTH":
		header.width, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid WIDTH field %s", value)
		}
	case "HEIGHT":
		header.height, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid HEIGHT field %s", value)
		}
	case "VIEWPOINT":
		if len(tokens) != 7 {
			return errors.Errorf("unexpected number of fields in VIEWPOINT line. Expected 7, got %d", len(tokens))
		}
	case "POINTS":
		var points uint64
		points, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid POINTS field %s", value)
		}
		if points != header.width*header.height {
			return errors.Errorf("POINTS field %d does not match WIDTH*HEIGHT %d", points, header.width*header.height)
		}
		header.points = points
	case "DATA":
		header.data, err = ParsePCDType(value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ReadPCD reads a PCD file written by ToPCD or ToPCDWithNormals. The returned normal
// cloud is nil when the file carries no normals.
func ReadPCD(inRaw io.Reader, frame string) (*PointCloud, *NormalCloud, error) {
	header := pcdHeader{}
	in := bufio.NewReader(inRaw)
	headerLineCount := 0
	for headerLineCount < len(pcdHeaderFields) {
		line, err := in.ReadString('\n')
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error reading header line %d", headerLineCount)
		}
		line, _, _ = strings.Cut(line, pcdCommentChar)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := parsePCDHeaderLine(line, headerLineCount, &header); err != nil {
			return nil, nil, err
		}
		headerLineCount++
	}

	var rows [][]float64
	var err error
	switch header.data {
	case PCDAscii:
		rows, err = readPCDAscii(in, header)
	case PCDBinary:
		rows, err = readPCDBinary(in, header)
	default:
		return nil, nil, errors.Errorf("unsupported pcd data type %v", header.data)
	}
	if err != nil {
		return nil, nil, err
	}

	points := make([]r3.Vector, len(rows))
	var normals []r3.Vector
	if header.fields == pcdPointNormal {
		normals = make([]r3.Vector, len(rows))
	}
	for i, row := range rows {
		points[i] = r3.Vector{X: row[0], Y: row[1], Z: row[2]}
		if normals != nil {
			normals[i] = r3.Vector{X: row[3], Y: row[4], Z: row[5]}
		}
	}
	if normals == nil {
		return New(points, frame), nil, nil
	}
	return New(points, frame), NewNormalCloud(normals, frame), nil
}

func readPCDAscii(in *bufio.Reader, header pcdHeader) ([][]float64, error) {
	rows := make([][]float64, 0, header.points)
	for i := 0; i < int(header.points); i++ {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, err
		}
		tokens := strings.Fields(line)
		if len(tokens) != int(header.fields) {
			return nil, errors.Errorf("unexpected number of fields in point %d", i)
		}
		row := make([]float64, len(tokens))
		for j, token := range tokens {
			row[j], err = strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid point %d field %s", i, token)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readPCDBinary(in *bufio.Reader, header pcdHeader) ([][]float64, error) {
	rows := make([][]float64, 0, header.points)
	buf := make([]byte, 4*int(header.fields))
	for i := 0; i < int(header.points); i++ {
		if _, err := io.ReadFull(in, buf); err != nil {
			return nil, errors.Wrapf(err, "reading point %d", i)
		}
		row := make([]float64, int(header.fields))
		for j := range row {
			row[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
