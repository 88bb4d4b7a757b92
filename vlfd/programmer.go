package vlfd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/smims/go-vlfd/bitfile"
	"github.com/smims/go-vlfd/protocol"
	"github.com/smims/go-vlfd/usb"
)

// Programmer uploads FPGA bitstreams through a Device. The upload pipeline
// is: decode the bitstream text, encrypt the whole word sequence as one
// continuous cipher stream, switch the board to FPGA-programmer mode, write
// the stream through the FIFO in chunks sized to the board's advertised
// buffer depth, and verify the programmed status bit afterwards.
type Programmer struct {
	device *Device
}

// NewProgrammer creates a Programmer around an existing Device.
func NewProgrammer(device *Device) *Programmer {
	if device == nil {
		panic("device cannot be nil")
	}
	return &Programmer{device: device}
}

// ConnectProgrammer opens the board and returns a Programmer for it.
//
// Example:
//
//	prog, err := vlfd.ConnectProgrammer(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prog.Close()
//	err = prog.Program(ctx, "design.bit.txt")
func ConnectProgrammer(ctx context.Context, opts ...Option) (*Programmer, error) {
	device, err := Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewProgrammer(device), nil
}

// Device returns the underlying session.
func (p *Programmer) Device() *Device {
	return p.device
}

// Close closes the underlying session.
func (p *Programmer) Close() error {
	return p.device.Close()
}

// Program decodes a bitstream file and uploads it. The file is decoded
// before any device traffic, so a malformed file leaves the board
// untouched.
func (p *Programmer) Program(ctx context.Context, path string) error {
	p.reportProgress(Progress{Phase: PhaseDecoding})

	bs, err := bitfile.Parse(path)
	if err != nil {
		return err
	}
	return p.upload(ctx, bs.Words)
}

// ProgramReader decodes a bitstream from r and uploads it.
func (p *Programmer) ProgramReader(ctx context.Context, r io.Reader) error {
	p.reportProgress(Progress{Phase: PhaseDecoding})

	bs, err := bitfile.ParseReader(r)
	if err != nil {
		return err
	}
	return p.upload(ctx, bs.Words)
}

// ProgramBitstream uploads an already-decoded bitstream. The bitstream is
// not modified.
func (p *Programmer) ProgramBitstream(ctx context.Context, bs *bitfile.Bitstream) error {
	if bs == nil {
		return fmt.Errorf("bitstream cannot be nil")
	}
	return p.upload(ctx, bs.Words)
}

func (p *Programmer) upload(ctx context.Context, bitstream []uint16) error {
	d := p.device
	startTime := time.Now()
	totalWords := len(bitstream)

	p.reportProgress(Progress{Phase: PhaseConnecting, TotalWords: totalWords})

	if err := d.EnsureSession(ctx); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}

	// One continuous keystream over the whole bitstream, not per chunk.
	words := append([]uint16(nil), bitstream...)
	d.cipher.Encrypt(words)

	if err := d.ActivateProgrammer(ctx); err != nil {
		return fmt.Errorf("activate programmer: %w", err)
	}

	// The FIFO depth is advertised in words; the wire chunk is its byte
	// equivalent, never less than one word.
	chunkBytes := int(d.config.FIFODepth()) * protocol.WordBytes
	if chunkBytes < protocol.WordBytes {
		chunkBytes = protocol.WordBytes
	}

	buf := protocol.WordsToBytes(words)
	totalChunks := (len(buf) + chunkBytes - 1) / chunkBytes

	d.logInfo("uploading bitstream",
		"words", totalWords,
		"chunk_words", chunkBytes/protocol.WordBytes,
		"chunks", totalChunks,
	)

	for chunk := 0; len(buf) > 0; chunk++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		n := chunkBytes
		if n > len(buf) {
			n = len(buf)
		}
		if err := d.transport.BulkWrite(ctx, usb.EndpointFifoWrite, buf[:n]); err != nil {
			return fmt.Errorf("write chunk %d/%d: %w", chunk+1, totalChunks, err)
		}
		buf = buf[n:]

		written := totalWords - len(buf)/protocol.WordBytes
		p.reportProgress(Progress{
			Phase:        PhaseUploading,
			CurrentChunk: chunk + 1,
			TotalChunks:  totalChunks,
			WordsWritten: written,
			TotalWords:   totalWords,
			Percentage:   float64(written) / float64(totalWords) * 90,
			ElapsedTime:  time.Since(startTime),
		})
	}

	p.reportProgress(Progress{
		Phase:        PhaseVerifying,
		CurrentChunk: totalChunks,
		TotalChunks:  totalChunks,
		WordsWritten: totalWords,
		TotalWords:   totalWords,
		Percentage:   95,
		ElapsedTime:  time.Since(startTime),
	})

	if err := d.CommandActive(ctx); err != nil {
		return err
	}
	if err := d.ReadConfig(ctx); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if !d.config.IsProgrammed() {
		return ErrNotProgrammed
	}

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentChunk: totalChunks,
		TotalChunks:  totalChunks,
		WordsWritten: totalWords,
		TotalWords:   totalWords,
		Percentage:   100,
		ElapsedTime:  time.Since(startTime),
	})

	d.logInfo("programming complete",
		"words", totalWords,
		"elapsed", time.Since(startTime).String(),
	)
	return nil
}

func (p *Programmer) reportProgress(progress Progress) {
	if p.device.cfg.ProgressCallback != nil {
		p.device.cfg.ProgressCallback(progress)
	}
}
