//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package lnch

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/VikaNa/pvtm-core/internal/vv"
)

// ModelSourceKind - an explicit train-vs-reuse switch; the mere presence of a
// path never acts as a mode flag
type ModelSourceKind int

const (
	TrainNew ModelSourceKind = iota
	LoadPretrained
)

type ModelSource struct {
	Kind ModelSourceKind
	Dir  string // only meaningful for LoadPretrained
}

func (m ModelSource) Pretrained() bool {
	return m.Kind == LoadPretrained
}

type CurrentConfiguration struct {
	InputPath     string
	OutputDir     string
	Language      string // "en", "de", "autodetect"
	ModelType     string // "w2v", "glove", "lexvec"
	Dimension     int
	Epochs        int
	EmbSource     ModelSource
	GMMSource     ModelSource
	GMMRange      [3]int // start, end, step
	GMMCvTypes    []string
	GMMNInits     int
	GMMVerbose    bool
	NumTopicWords int
	NumSimWords   int
	NumSimDocs    int
	WorkerCount   int
	LogLevel      int
	BlackAndWhite bool
	QuietStart    bool
	ProfileCPU    bool
	ServeResults  bool
	HostIP        string
	HostPort      int
}

// BuildDefaultConfig - return a CurrentConfiguration filled out with various default values
func BuildDefaultConfig() *CurrentConfiguration {
	var c CurrentConfiguration
	c.OutputDir = vv.DEFAULTOUTPUT
	c.Language = vv.DEFAULTLANGUAGE
	c.ModelType = vv.DEFAULTMODELTYPE
	c.Dimension = vv.DEFAULTDIMENSION
	c.Epochs = vv.DEFAULTEPOCHS
	c.EmbSource = ModelSource{Kind: TrainNew}
	c.GMMSource = ModelSource{Kind: TrainNew}
	c.GMMRange = [3]int{vv.DEFAULTGMMSTART, vv.DEFAULTGMMEND, vv.DEFAULTGMMSTEP}
	c.GMMCvTypes = append([]string{}, vv.DefaultCovariances...)
	c.GMMNInits = vv.DEFAULTGMMNINITS
	c.NumTopicWords = vv.DEFAULTTOPICWORDS
	c.NumSimWords = vv.DEFAULTSIMWORDS
	c.NumSimDocs = vv.DEFAULTSIMDOCS
	c.WorkerCount = runtime.NumCPU()
	c.LogLevel = vv.DEFAULTGOLOGLEVEL
	c.HostIP = vv.SERVEDFROMHOST
	c.HostPort = vv.SERVEDFROMPORT
	return &c
}

// NewMessageMakerWithDefaults - for packages that need to speak before ConfigAtLaunch has run
func NewMessageMakerWithDefaults() *MessageMaker {
	return NewMessageMaker(BuildDefaultConfig(), LaunchStruct{
		Name:       vv.MYNAME,
		Version:    vv.VERSION,
		Shortname:  vv.SHORTNAME,
		LaunchTime: vv.LaunchTime,
	})
}

// ConfigAtLaunch - read the configuration values from JSON and/or command line
func ConfigAtLaunch() *CurrentConfiguration {
	const (
		FAIL1 = `Could not parse '%s'. Skipping and attempting to use built-in defaults instead.`
		FAIL2 = "'-gr' wants three integers: start end step"
		FAIL3 = "unknown covariance family '%s'; valid: spherical diag tied full"
		FAIL4 = "no input file given: '-i <file>' is required"
	)

	cfg := BuildDefaultConfig()
	mm := NewMessageMakerWithDefaults()

	uh, _ := os.UserHomeDir()
	cfile := fmt.Sprintf("%s/%s/%s", uh, vv.CONFIGLOCATION, vv.CONFIGNAME)

	loadedcfg, e := os.Open(cfile)
	if e == nil {
		decoderc := json.NewDecoder(loadedcfg)
		confc := CurrentConfiguration{}
		errc := decoderc.Decode(&confc)
		_ = loadedcfg.Close()
		if errc == nil {
			*cfg = confc
		} else {
			mm.Emit(fmt.Sprintf(FAIL1, cfile), MSGCRIT)
		}
	}

	nextint := func(args []string, i int) int {
		v, err := strconv.Atoi(args[i+1])
		mm.Error(err)
		return v
	}

	args := os.Args[1:len(os.Args)]

	for i, a := range args {
		switch a {
		case "-v":
			fmt.Println(vv.VERSION)
			os.Exit(1)
		case "-h":
			printversion(mm)
			fmt.Printf(mm.ColStyle(vv.HELPTEXT), vv.DEFAULTOUTPUT, vv.DEFAULTDIMENSION, vv.DEFAULTEPOCHS,
				vv.DEFAULTMODELTYPE, vv.DEFAULTGMMSTART, vv.DEFAULTGMMEND, vv.DEFAULTGMMSTEP,
				vv.DEFAULTGMMNINITS, vv.DEFAULTTOPICWORDS, vv.DEFAULTSIMWORDS, vv.DEFAULTSIMDOCS,
				vv.SERVEDFROMHOST, vv.SERVEDFROMPORT)
			os.Exit(0)
		case "-i":
			cfg.InputPath = args[i+1]
		case "-o":
			cfg.OutputDir = args[i+1]
		case "-l":
			cfg.Language = args[i+1]
		case "-gl":
			cfg.LogLevel = nextint(args, i)
		case "-d":
			cfg.Dimension = nextint(args, i)
		case "-e":
			cfg.Epochs = nextint(args, i)
		case "-mt":
			cfg.ModelType = args[i+1]
		case "-d2vp":
			cfg.EmbSource = ModelSource{Kind: LoadPretrained, Dir: args[i+1]}
		case "-gmmp":
			cfg.GMMSource = ModelSource{Kind: LoadPretrained, Dir: args[i+1]}
		case "-gr":
			if i+3 >= len(args) {
				mm.Emit(FAIL2, MSGMAND)
				mm.ExitOrHang(1)
			}
			cfg.GMMRange = [3]int{nextint(args, i), nextint(args, i+1), nextint(args, i+2)}
		case "-gcv":
			cfg.GMMCvTypes = strings.Split(args[i+1], ",")
		case "-gi":
			cfg.GMMNInits = nextint(args, i)
		case "-gv":
			cfg.GMMVerbose = true
		case "-ntp":
			cfg.NumTopicWords = nextint(args, i)
		case "-nsw":
			cfg.NumSimWords = nextint(args, i)
		case "-nsd":
			cfg.NumSimDocs = nextint(args, i)
		case "-wc":
			cfg.WorkerCount = nextint(args, i)
		case "-srv":
			cfg.ServeResults = true
		case "-sa":
			cfg.HostIP = args[i+1]
		case "-sp":
			cfg.HostPort = nextint(args, i)
		case "-bw":
			cfg.BlackAndWhite = true
		case "-q":
			cfg.QuietStart = true
		case "-cpuprof":
			cfg.ProfileCPU = true
		default:
			// do nothing
		}
	}

	for _, cv := range cfg.GMMCvTypes {
		switch cv {
		case "spherical", "diag", "tied", "full":
			// ok
		default:
			mm.Emit(fmt.Sprintf(FAIL3, cv), MSGMAND)
			mm.ExitOrHang(1)
		}
	}

	if cfg.InputPath == "" {
		mm.Emit(FAIL4, MSGMAND)
		mm.ExitOrHang(1)
	}

	return cfg
}

func printversion(mm *MessageMaker) {
	v := fmt.Sprintf("%s (v.%s)", vv.MYNAME, vv.VERSION)
	mm.Emit(v, MSGMAND)
}
