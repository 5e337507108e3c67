// Command zarrserved runs a Zarr v2 gateway over a demo in-memory dataset.
// Real deployments embed serve.Handler behind their own Resolver instead.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/bitmark-inc/logger"

	zarr "github.com/datatrellis/zarr-serve"
	"github.com/datatrellis/zarr-serve/adapter"
	"github.com/datatrellis/zarr-serve/serve"
)

func main() {
	configPath := flag.String("config", "", "path to TOML configuration")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %s\n", err)
		os.Exit(1)
	}

	err = logger.Initialise(logger.Configuration{
		Directory: cfg.Logging.Directory,
		File:      cfg.Logging.File,
		Size:      cfg.Logging.Size,
		Count:     cfg.Logging.Count,
		Console:   cfg.Logging.Console,
		Levels:    cfg.Logging.Levels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %s\n", err)
		os.Exit(1)
	}
	defer logger.Finalise()

	log := logger.New("main")

	resolver, err := demoResolver()
	if err != nil {
		log.Criticalf("seeding demo data: %s", err)
		os.Exit(1)
	}

	handler := serve.New(resolver, zarr.NewCodec(cfg.Codec))
	log.Infof("listening on %s", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, handler); err != nil {
		log.Criticalf("server stopped: %s", err)
		os.Exit(1)
	}
}

// demoResolver seeds a small tree: a root container holding one plain
// array, one sparse array and one table with column arrays.
func demoResolver() (*adapter.Resolver, error) {
	resolver := adapter.NewResolver()

	int32LE := zarr.Dtype{ByteOrder: zarr.BOLittleEndian, BasicType: zarr.BTInteger, ByteSize: 4}
	float64LE := zarr.Dtype{ByteOrder: zarr.BOLittleEndian, BasicType: zarr.BTFloatingPoint, ByteSize: 8}

	ramp := make([]byte, 25*4)
	for i := 0; i < 25; i++ {
		binary.LittleEndian.PutUint32(ramp[i*4:], uint32(i))
	}
	counts, err := adapter.NewArray(
		zarr.DataType{Dtype: int32LE},
		[]int{25},
		zarr.ChunkSpec{{10, 10, 5}},
		ramp,
		zarr.Attributes{"units": "counts"},
	)
	if err != nil {
		return nil, err
	}

	peaks, err := adapter.NewSparse(
		float64LE,
		[]int{4, 4},
		zarr.ChunkSpec{{4}, {4}},
		[][]int{{0, 0}, {3, 1}},
		append(
			binary.LittleEndian.AppendUint64(nil, 0x3FF0000000000000), // 1.0
			binary.LittleEndian.AppendUint64(nil, 0x4000000000000000)..., // 2.0
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	timeCol := make([]byte, 8*8)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(timeCol[i*8:], uint64(i))
	}
	timeArr, err := adapter.NewArray(
		zarr.DataType{Dtype: float64LE},
		[]int{8},
		zarr.ChunkSpec{{8}},
		timeCol,
		nil,
	)
	if err != nil {
		return nil, err
	}

	resolver.Add("", adapter.NewContainer([]string{"counts", "peaks", "readings"}, zarr.Attributes{"demo": true}))
	resolver.Add("counts", counts)
	resolver.Add("peaks", peaks)
	resolver.Add("readings", adapter.NewTable([]string{"time"}, nil))
	resolver.Add("readings/time", timeArr)
	return resolver, nil
}
