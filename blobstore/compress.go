package blobstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm used for snapshot blob payloads.
type Compression uint8

const (
	// CompressionNone stores payloads uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast with a decent ratio; the default for hot
	// snapshot churn.
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades CPU for ratio; suited to cold archival
	// snapshots.
	CompressionZSTD Compression = 2
)

var ErrCorruptBlock = errors.New("corrupt compressed block")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Encoder/decoder pools: zstd instances are expensive to construct.
var (
	zstdEncoderPool = sync.Pool{New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	zstdDecoderPool = sync.Pool{New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	}}
)

// blockHeaderSize is [compression uint8][uncompressedSize uint32][crc uint32].
const blockHeaderSize = 1 + 4 + 4

// CompressBlock frames and compresses data with the given algorithm. If
// compression does not shrink the payload, the block is stored raw.
func CompressBlock(data []byte, c Compression) ([]byte, error) {
	var payload []byte
	switch c {
	case CompressionNone:
		payload = data
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(data) {
			// Incompressible.
			c = CompressionNone
			payload = data
		} else {
			payload = buf[:n]
		}
	case CompressionZSTD:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
		if len(payload) >= len(data) {
			c = CompressionNone
			payload = data
		}
	default:
		return nil, fmt.Errorf("unknown compression type %d", c)
	}

	out := make([]byte, blockHeaderSize+len(payload))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:5], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[5:9], crc32.Checksum(data, castagnoli))
	copy(out[blockHeaderSize:], payload)
	return out, nil
}

// DecompressBlock reverses CompressBlock, verifying the checksum.
func DecompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptBlock)
	}
	c := Compression(block[0])
	size := binary.LittleEndian.Uint32(block[1:5])
	sum := binary.LittleEndian.Uint32(block[5:9])
	payload := block[blockHeaderSize:]

	var data []byte
	switch c {
	case CompressionNone:
		data = payload
	case CompressionLZ4:
		data = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		data = data[:n]
	case CompressionZSTD:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		var err error
		data, err = dec.DecodeAll(payload, nil)
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown compression type %d", ErrCorruptBlock, c)
	}

	if uint32(len(data)) != size {
		return nil, fmt.Errorf("%w: size mismatch", ErrCorruptBlock)
	}
	if crc32.Checksum(data, castagnoli) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptBlock)
	}
	return data, nil
}
