package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// propertiesFormat is the viper config type of Java-style properties files.
const propertiesFormat = "properties"

// propertiesCodec reads and writes Java-style properties files for viper. Dotted keys
// become nested maps, so "gui.enabled" is addressed the same way in viper.
type propertiesCodec struct{}

var _ viper.Codec = propertiesCodec{}

// Decode implements viper.Decoder.
func (propertiesCodec) Decode(b []byte, v map[string]any) error {
	p, err := properties.Load(b, properties.UTF8)
	if err != nil {
		return fmt.Errorf("invalid properties: %w", err)
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		setNested(v, strings.Split(key, "."), value)
	}
	return nil
}

// Encode implements viper.Encoder.
func (propertiesCodec) Encode(v map[string]any) ([]byte, error) {
	flat := make(map[string]string)
	flatten("", v, flat)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	p := properties.NewProperties()
	for _, key := range keys {
		if _, _, err := p.Set(key, flat[key]); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", key, err)
		}
	}

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setNested(m map[string]any, path []string, value string) {
	for _, segment := range path[:len(path)-1] {
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[segment] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(value)
	}
}

// newCodecRegistry returns viper's registry extended with the properties codec.
func newCodecRegistry() viper.CodecRegistry {
	registry := viper.NewCodecRegistry()
	// The default registry never rejects a codec.
	_ = registry.RegisterCodec(propertiesFormat, propertiesCodec{})
	return registry
}
