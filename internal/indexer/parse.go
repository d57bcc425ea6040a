package indexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddresses converts string addresses into common.Address.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addresses = append(addresses, common.HexToAddress(input))
	}
	return addresses, nil
}

// ParseOptionalAddress returns nil for an empty input.
func ParseOptionalAddress(input string) (*common.Address, error) {
	addresses, err := ParseAddresses([]string{input})
	if err != nil || len(addresses) == 0 {
		return nil, err
	}
	return &addresses[0], nil
}

// ParseHashes converts 32-byte hex strings into common.Hash.
func ParseHashes(inputs []string) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("invalid hash: %s", input)
		}
		if len(data) != common.HashLength {
			return nil, fmt.Errorf("invalid hash length: %s", input)
		}
		hashes = append(hashes, common.BytesToHash(data))
	}
	return hashes, nil
}

// ReadHashes reads one hash per line, skipping blank lines and # comments.
func ReadHashes(r io.Reader) ([]common.Hash, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hashes: %w", err)
	}
	return ParseHashes(lines)
}
