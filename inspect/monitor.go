// Package inspect serves the live state of registered hardware structures
// over HTTP, for poking at a running simulation from a browser or script.
package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A Structure is a named hardware model that can describe itself.
type Structure interface {
	Name() string
	DumpTo(w io.Writer)
}

// Monitor turns registered structures into a web server for external
// inspection.
type Monitor struct {
	structures []Structure
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitoring server.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterStructure registers a structure to be monitored.
func (m *Monitor) RegisterStructure(s Structure) {
	m.structures = append(m.structures, s)
}

// Handler returns the monitor's HTTP routes.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/structures", m.listStructures)
	r.HandleFunc("/api/structure/{name}", m.listStructureDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/dump/{name}", m.dumpStructure)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server with a custom port if
// wanted, optionally opening it in a browser.
func (m *Monitor) StartServer(openBrowser bool) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring structures with %s\n", url)

	if openBrowser {
		err = browser.OpenURL(url + "/api/structures")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
		}
	}

	go func() {
		err = http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()
}

func (m *Monitor) listStructures(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.structures))
	for _, s := range m.structures {
		names = append(names, s.Name())
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listStructureDetails(
	w http.ResponseWriter,
	r *http.Request,
) {
	name := mux.Vars(r)["name"]

	structure := m.findStructureOr404(w, name)
	if structure == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(structure)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	StructureName string `json:"structure_name,omitempty"`
	FieldName     string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	structure := m.findStructureOr404(w, req.StructureName)
	if structure == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(structure)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) dumpStructure(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	structure := m.findStructureOr404(w, name)
	if structure == nil {
		return
	}

	structure.DumpTo(w)
}

func (m *Monitor) findStructureOr404(
	w http.ResponseWriter,
	name string,
) Structure {
	var structure Structure
	for _, s := range m.structures {
		if s.Name() == name {
			structure = s
		}
	}

	if structure == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Structure not found"))
		dieOnErr(err)
	}

	return structure
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
