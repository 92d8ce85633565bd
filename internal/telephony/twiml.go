package telephony

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// twimlResponse is the document root of a TwiML reply
type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Verbs   []interface{} `xml:",any"`
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlPlay struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name      `xml:"Gather"`
	Input         string        `xml:"input,attr"`
	Language      string        `xml:"language,attr,omitempty"`
	Timeout       int           `xml:"timeout,attr"`
	Action        string        `xml:"action,attr,omitempty"`
	PartialURL    string        `xml:"partialResultCallback,attr,omitempty"`
	BargeIn       bool          `xml:"bargeIn,attr"`
	Hints         string        `xml:"hints,attr,omitempty"`
	NestedActions []interface{} `xml:",any"`
}

type twimlRecord struct {
	XMLName   xml.Name `xml:"Record"`
	MaxLength int      `xml:"maxLength,attr"`
	Timeout   int      `xml:"timeout,attr"`
	Action    string   `xml:"action,attr,omitempty"`
	PlayBeep  bool     `xml:"playBeep,attr"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// RenderTwiML serializes an instruction into the gateway's XML markup.
// A Speak directly followed by a barge-in Gather is nested inside it, which
// is how the gateway lets the caller cut the prompt short.
func RenderTwiML(instr Instruction) (string, error) {
	resp := twimlResponse{}
	for i := 0; i < len(instr.Actions); i++ {
		if speak, ok := instr.Actions[i].(Speak); ok && i+1 < len(instr.Actions) {
			if gather, ok := instr.Actions[i+1].(Gather); ok && gather.BargeIn {
				prompt, err := toVerb(speak)
				if err != nil {
					return "", err
				}
				verb, err := toVerb(gather)
				if err != nil {
					return "", err
				}
				nested := verb.(twimlGather)
				nested.NestedActions = append(nested.NestedActions, prompt)
				resp.Verbs = append(resp.Verbs, nested)
				i++
				continue
			}
		}

		verb, err := toVerb(instr.Actions[i])
		if err != nil {
			return "", err
		}
		resp.Verbs = append(resp.Verbs, verb)
	}

	body, err := xml.MarshalIndent(resp, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to render twiml: %w", err)
	}
	return xml.Header + string(body), nil
}

func toVerb(action Action) (interface{}, error) {
	switch a := action.(type) {
	case Speak:
		if a.ArtifactURL != "" {
			return twimlPlay{URL: a.ArtifactURL}, nil
		}
		return twimlSay{Voice: a.Voice, Language: a.Language, Text: a.Text}, nil
	case Gather:
		return twimlGather{
			Input:      string(a.Mode),
			Language:   a.Language,
			Timeout:    int(a.Timeout.Seconds()),
			Action:     a.CallbackURL,
			PartialURL: a.PartialURL,
			BargeIn:    a.BargeIn,
			Hints:      strings.Join(a.BargeInKeywords, ", "),
		}, nil
	case Record:
		return twimlRecord{
			MaxLength: int(a.MaxLength.Seconds()),
			Timeout:   int(a.SilenceTimeout.Seconds()),
			Action:    a.CallbackURL,
			PlayBeep:  true,
		}, nil
	case Redirect:
		return twimlRedirect{Method: "POST", URL: a.CallbackURL}, nil
	case Hangup:
		return twimlHangup{}, nil
	default:
		return nil, fmt.Errorf("unknown call-control action %T", action)
	}
}
