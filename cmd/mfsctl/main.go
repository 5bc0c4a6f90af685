package main

import (
	"bytes"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mfsd/internal/mfs"
	"mfsd/internal/version"
)

func main() {
	var addr string
	var showVersion bool
	var timeout time.Duration
	flag.StringVar(&addr, "addr", "127.0.0.1:6400", "mfsd address (host:port)")
	flag.BoolVar(&showVersion, "version", false, "Print version information and exit")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "I/O timeout for each request")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		fmt.Println("dial error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "version":
		fmt.Println(version.Get().String())
		return

	case "ls":
		resp, err := roundTrip(conn, timeout, mfs.OpLS, nil, nil)
		if err != nil {
			fatal(err)
		}
		printLS(resp.Data)

	case "noop":
		if _, err := roundTrip(conn, timeout, mfs.OpNOOP, nil, nil); err != nil {
			fatal(err)
		}
		fmt.Println("OK")

	case "read":
		if len(args) < 2 {
			fmt.Println("read <name>")
			os.Exit(2)
		}
		resp, err := roundTrip(conn, timeout, mfs.OpREAD, []byte(args[1]), nil)
		if err != nil {
			fatal(err)
		}
		if resp.Op == mfs.ResponseOf(mfs.OpERROR) {
			printProtoError(resp.Data)
			os.Exit(1)
		}
		os.Stdout.Write(resp.Data)

	case "write":
		if len(args) < 3 {
			fmt.Println("write <name> <text>")
			os.Exit(2)
		}
		resp, err := roundTrip(conn, timeout, mfs.OpWRITE, []byte(args[1]), []byte(args[2]))
		if err != nil {
			fatal(err)
		}
		if resp.Op == mfs.ResponseOf(mfs.OpERROR) {
			printProtoError(resp.Data)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", humanize.Bytes(uint64(len(args[2]))))

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage: mfsctl -addr host:port <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  ls")
	fmt.Println("  noop")
	fmt.Println("  read <name>")
	fmt.Println("  write <name> <text>")
}

// roundTrip sends one request and reads back exactly one response,
// matching the one-request-one-response discipline of the wire protocol.
func roundTrip(conn net.Conn, timeout time.Duration, op byte, path, data []byte) (mfs.Message, error) {
	_ = conn.SetDeadline(time.Now().Add(timeout))

	var hdrBuf [mfs.HeaderSize]byte
	mfs.EncodeHeader(hdrBuf[:], mfs.Header{PSize: uint32(len(path)), DSize: uint32(len(data)), Op: op})

	var out bytes.Buffer
	out.Write(hdrBuf[:])
	out.Write(path)
	out.Write(data)
	if _, err := conn.Write(out.Bytes()); err != nil {
		return mfs.Message{}, err
	}

	var respHdr [mfs.HeaderSize]byte
	if _, err := readFull(conn, respHdr[:]); err != nil {
		return mfs.Message{}, err
	}
	h := mfs.DecodeHeader(respHdr[:])

	respPath := make([]byte, h.PSize)
	if _, err := readFull(conn, respPath); err != nil {
		return mfs.Message{}, err
	}
	respData := make([]byte, h.DSize)
	if _, err := readFull(conn, respData); err != nil {
		return mfs.Message{}, err
	}

	return mfs.Message{PSize: h.PSize, DSize: h.DSize, Op: h.Op, Path: respPath, Data: respData}, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func printLS(data []byte) {
	names := bytes.Split(data, []byte{0})
	count := 0
	for _, n := range names {
		if len(n) == 0 {
			continue
		}
		fmt.Println(string(n))
		count++
	}
	fmt.Printf("%d file(s), %s\n", count, humanize.Bytes(uint64(len(data))))
}

func printProtoError(data []byte) {
	if len(data) != 2 {
		fmt.Printf("ERROR (malformed payload, %d bytes)\n", len(data))
		return
	}
	code := uint16(data[0]) | uint16(data[1])<<8
	fmt.Printf("ERROR code=%d\n", code)
}

func fatal(err error) {
	fmt.Println("error:", err)
	os.Exit(1)
}
