// Package io provides JSON import of substation topologies and JSON export
// of computed layouts.
//
// # Topology Format
//
// A topology lists the voltage levels of a substation, each with its nodes
// and edges, plus the equipment joining them:
//
//	{
//	  "id": "S1",
//	  "voltageLevels": [
//	    {
//	      "id": "VL1",
//	      "nodes": [
//	        {"id": "bbs1", "kind": "bus", "busbarIndex": 1, "sectionIndex": 1},
//	        {"id": "d1", "kind": "switch", "switchKind": "disconnector"},
//	        {"id": "b1", "kind": "switch", "switchKind": "breaker"},
//	        {"id": "L1", "kind": "feeder", "direction": "top"}
//	      ],
//	      "edges": [["bbs1", "d1"], ["d1", "b1"], ["b1", "L1"]]
//	    }
//	  ],
//	  "multiTerminals": [
//	    {"id": "T1", "kind": "2wt", "feeders": [
//	      {"voltageLevel": "VL1", "node": "T1_1"},
//	      {"voltageLevel": "VL2", "node": "T1_2"}
//	    ]}
//	  ],
//	  "lines": [
//	    {"id": "LN1", "from": {"voltageLevel": "VL1", "node": "L1"},
//	                  "to":   {"voltageLevel": "VL2", "node": "L2"}}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: unique within its voltage level
//   - kind: "bus", "switch", "feeder", "fictitious" or "shunt"
//
// Optional:
//   - label: free text carried to the output
//   - switchKind: "breaker", "disconnector" or "load_break_switch"
//   - open: switch state
//   - busbarIndex, sectionIndex: busbar hints, 1-based
//   - direction: preset feeder side, "top" or "bottom"
//
// Voltage levels become diagram panels in the order they are listed.
//
// # Layout Format
//
// [WriteLayout] writes a [Layout]: the run ID, one entry per panel with its
// frame, node coordinates, edge polylines and cells, then the
// multi-terminal junctions and the routed snake lines. Coordinates are
// absolute diagram coordinates.
//
// # Errors
//
// Every import failure is an [errors.ErrCodeInvalidInput] error naming the
// voltage level and node or edge at fault.
//
// [errors.ErrCodeInvalidInput]: github.com/matzehuels/sldlayout/pkg/errors.ErrCodeInvalidInput
package io
