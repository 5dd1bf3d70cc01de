package workflow

import "encoding/json"

// edgeWire mirrors Edge but accepts both the primary field names and
// snake_case alternates: from_node_id/to_node_id/from_port/to_port.
type edgeWire struct {
	FromNodeID  string `json:"fromNodeId"`
	FromNodeID2 string `json:"from_node_id"`
	FromPort    string `json:"fromPort"`
	FromPort2   string `json:"from_port"`
	ToNodeID    string `json:"toNodeId"`
	ToNodeID2   string `json:"to_node_id"`
	ToPort      string `json:"toPort"`
	ToPort2     string `json:"to_port"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// UnmarshalJSON decodes an Edge, accepting either field-name convention and
// applying the documented port defaults.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.FromNodeID = firstNonEmpty(w.FromNodeID, w.FromNodeID2)
	e.ToNodeID = firstNonEmpty(w.ToNodeID, w.ToNodeID2)
	e.FromPort = firstNonEmpty(w.FromPort, w.FromPort2, DefaultFromPort)
	e.ToPort = firstNonEmpty(w.ToPort, w.ToPort2, DefaultToPort)
	return nil
}

// MarshalJSON emits the primary (camelCase) field names.
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FromNodeID string `json:"fromNodeId"`
		FromPort   string `json:"fromPort"`
		ToNodeID   string `json:"toNodeId"`
		ToPort     string `json:"toPort"`
	}{e.FromNodeID, e.FromPort, e.ToNodeID, e.ToPort})
}
