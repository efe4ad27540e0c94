package flv

import "fmt"

// Metadata is the decoded content of an onMetaData script tag.
type Metadata struct {
	Event      string
	Properties map[string]any

	DurationSecs    float64
	Width           float64
	Height          float64
	FrameRate       float64
	AudioSampleRate float64
	VideoCodecID    float64
	AudioCodecID    float64

	// KeyframeTimes and KeyframePositions come from the optional keyframes
	// index written by tools such as yamdi.
	KeyframeTimes     []float64
	KeyframePositions []float64
}

// ParseMetadata decodes a script tag payload: an event name followed by
// an object or ECMA array of properties.
func ParseMetadata(payload []byte) (*Metadata, error) {
	d := &amfDecoder{buf: payload}

	name, err := d.value()
	if err != nil {
		return nil, fmt.Errorf("reading script event name: %w", err)
	}
	event, ok := name.(string)
	if !ok {
		return nil, fmt.Errorf("script event name is %T, want string", name)
	}

	body, err := d.value()
	if err != nil {
		return nil, fmt.Errorf("reading %s properties: %w", event, err)
	}
	props, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s properties are %T, want object", event, body)
	}

	md := &Metadata{
		Event:           event,
		Properties:      props,
		DurationSecs:    number(props, "duration"),
		Width:           number(props, "width"),
		Height:          number(props, "height"),
		FrameRate:       number(props, "framerate"),
		AudioSampleRate: number(props, "audiosamplerate"),
		VideoCodecID:    number(props, "videocodecid"),
		AudioCodecID:    number(props, "audiocodecid"),
	}
	if kf, ok := props["keyframes"].(map[string]any); ok {
		md.KeyframeTimes = numbers(kf["times"])
		md.KeyframePositions = numbers(kf["filepositions"])
	}
	return md, nil
}

func number(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}

func numbers(v any) []float64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		if f, ok := item.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}
