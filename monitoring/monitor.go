// Package monitoring turns a running simulation into a web server that can
// pause, continue and single-step it, and inspect its components.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/ahbsim/monitoring/web"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	harness    *sim.Harness
	components []sim.Component
	buffers    []sim.BufferInfo
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterHarness registers the harness that runs the simulation.
func (m *Monitor) RegisterHarness(h *sim.Harness) {
	m.harness = h
}

// RegisterComponent register a component to be monitored.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)

	m.registerBuffers(c)
}

var bufferInfoType = reflect.TypeOf((*sim.BufferInfo)(nil)).Elem()

// registerBuffers finds the buffers held in the fields of a component,
// including the fields of embedded structs.
func (m *Monitor) registerBuffers(c any) {
	v := reflect.ValueOf(c)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := field.Type()

		if v.Type().Field(i).Anonymous {
			embedded := reflect.NewAt(fieldType, unsafe.Pointer(field.UnsafeAddr()))
			if fieldType.Kind() == reflect.Ptr {
				embedded = embedded.Elem()
			}

			m.registerBuffers(embedded.Interface())

			continue
		}

		if fieldType.Kind() != reflect.Interface ||
			!fieldType.Implements(bufferInfoType) ||
			field.IsNil() {
			continue
		}

		buf := reflect.NewAt(
			fieldType,
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(sim.BufferInfo)
		m.buffers = append(m.buffers, buf)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseHarness)
	r.HandleFunc("/api/continue", m.continueHarness)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/step", m.step)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/value/{name}/{path}", m.fieldValue)
	r.HandleFunc("/api/buffers", m.hangDetectorBuffers)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server. It returns the URL the
// server listens on.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	dieOnErr(err)

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	return url
}

// StopServer closes the web server.
func (m *Monitor) StopServer() {
	if m.server == nil {
		return
	}

	dieOnErr(m.server.Close())
	m.server = nil
}

func (m *Monitor) pauseHarness(w http.ResponseWriter, _ *http.Request) {
	m.harness.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueHarness(w http.ResponseWriter, _ *http.Request) {
	m.harness.Continue()
	w.WriteHeader(http.StatusOK)
}

type nowRsp struct {
	Cycle uint64 `json:"cycle"`
	Time  uint64 `json:"time_ps"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, nowRsp{
		Cycle: m.harness.CurrentCycle(),
		Time:  uint64(m.harness.CurrentTime()),
	})
}

func (m *Monitor) step(w http.ResponseWriter, _ *http.Request) {
	err := m.harness.StepWhilePaused()
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.now(w, nil)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	dieOnErr(serializer.Serialize(w))
}

// fieldValue prints one value reached by a dot-separated path such as
// "queue.elements.0".
func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	component := m.findComponentOr404(w, vars["name"])
	if component == nil {
		return
	}

	elem, err := m.walkFields(component, vars["path"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	fmt.Fprintf(w, "%v", elem)
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) hangDetectorBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := m.buffersParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	sortedBuffers := m.sortAndSelectBuffers(sortMethod, limit, offset)

	rsp := make([]bufferRsp, 0, len(sortedBuffers))
	for _, b := range sortedBuffers {
		rsp = append(rsp, bufferRsp{
			Buffer: b.Name(),
			Level:  b.Size(),
			Cap:    b.Capacity(),
		})
	}

	writeJSON(w, rsp)
}

func (*Monitor) buffersParseParams(
	r *http.Request,
) (sort string, limit, offset int, err error) {
	sortMethod := r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s, allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = queryInt(r, "limit")
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = queryInt(r, "offset")
	if err != nil {
		return "", 0, 0, err
	}

	if limit < 0 || offset < 0 {
		return "", 0, 0, errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

func bufferPercent(b sim.BufferInfo) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers returns a page of the buffers, fullest first. A zero
// limit means all the buffers after the offset.
func (m *Monitor) sortAndSelectBuffers(
	sortMethod string,
	limit, offset int,
) []sim.BufferInfo {
	sortedBuffers := make([]sim.BufferInfo, len(m.buffers))
	copy(sortedBuffers, m.buffers)

	byLevel := func(i, j int) (bool, bool) {
		sizeI, sizeJ := sortedBuffers[i].Size(), sortedBuffers[j].Size()
		return sizeI > sizeJ, sizeI != sizeJ
	}
	byPercent := func(i, j int) (bool, bool) {
		pI, pJ := bufferPercent(sortedBuffers[i]), bufferPercent(sortedBuffers[j])
		return pI > pJ, pI != pJ
	}

	first, second := byPercent, byLevel
	if sortMethod == "level" {
		first, second = byLevel, byPercent
	}

	sort.SliceStable(sortedBuffers, func(i, j int) bool {
		if less, decided := first(i, j); decided {
			return less
		}

		less, _ := second(i, j)

		return less
	})

	if offset > len(sortedBuffers) {
		offset = len(sortedBuffers)
	}

	end := len(sortedBuffers)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sortedBuffers[offset:end]
}

type fieldFormatError struct {
	field string
}

func (e fieldFormatError) Error() string {
	return fmt.Sprintf("cannot walk into field %q", e.field)
}

// walkFields follows a dot-separated path of field names and slice indices.
func (m *Monitor) walkFields(
	comp any,
	fields string,
) (reflect.Value, error) {
	elem := reflect.ValueOf(comp)

	fieldNames := strings.Split(fields, ".")

	for len(fieldNames) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			elem = elem.Elem()
		case reflect.Struct:
			elem = elem.FieldByName(fieldNames[0])
			if !elem.IsValid() {
				return elem, fieldFormatError{field: fieldNames[0]}
			}

			fieldNames = fieldNames[1:]
		case reflect.Slice:
			index, err := strconv.Atoi(fieldNames[0])
			if err != nil || index < 0 || index >= elem.Len() {
				return elem, fieldFormatError{field: fieldNames[0]}
			}

			elem = elem.Index(index)
			fieldNames = fieldNames[1:]
		default:
			return elem, fieldFormatError{field: fieldNames[0]}
		}
	}

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	return elem, nil
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	snapshots := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		snapshots = append(snapshots, b.snapshot())
	}

	writeJSON(w, snapshots)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
