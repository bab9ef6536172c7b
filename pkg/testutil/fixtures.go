package testutil

// SampleTaxonJSON is a small /data-summary/taxons payload:
//
//	ALL -> BACT -> ecol
//	    -> EUKA -> hsap, mmus, atha, scer
const SampleTaxonJSON = `{
  "ALL": {"abbrev": "ALL", "commonName": "all", "id": 1, "name": "All organisms", "sortIndex": 0, "species": false,
    "children": {
      "BACT": {"abbrev": "BACT", "commonName": "bacteria", "id": 2, "name": "Bacteria", "sortIndex": 1, "species": false,
        "children": {
          "ecol": {"abbrev": "ecol", "children": {}, "commonName": "E. coli", "id": 20, "name": "Escherichia coli", "sortIndex": 0, "species": true}
        }},
      "EUKA": {"abbrev": "EUKA", "commonName": "eukaryotes", "id": 3, "name": "Eukaryota", "sortIndex": 2, "species": false,
        "children": {
          "hsap": {"abbrev": "hsap", "children": {}, "commonName": "human", "id": 30, "name": "Homo sapiens", "sortIndex": 0, "species": true},
          "mmus": {"abbrev": "mmus", "children": {}, "commonName": "mouse", "id": 31, "name": "Mus musculus", "sortIndex": 1, "species": true},
          "atha": {"abbrev": "atha", "children": {}, "commonName": "thale cress", "id": 32, "name": "Arabidopsis thaliana", "sortIndex": 2, "species": true},
          "scer": {"abbrev": "scer", "children": {}, "commonName": "yeast", "id": 33, "name": "Saccharomyces cerevisiae", "sortIndex": 3, "species": true}
        }}
    }}
}`

// SampleLayoutJSON is a /group/OG6_100000/layout payload over SampleTaxonJSON.
// With the initial e-value cutoff (1e-12) edges e1 and e2 are visible and
// e3 and e4 are filtered out.
const SampleLayoutJSON = `{
  "group": {
    "name": "OG6_100000",
    "genes": {
      "g1": {"accession": "hsap|P1", "taxon": {"abbrev": "hsap", "name": "Homo sapiens"}, "length": 420, "description": "kinase alpha",
             "ecNumbers": ["1.1.1.1", "2.7.11.1"], "pfamDomains": {"PF00069": [10, 200, 190]}},
      "g2": {"accession": "mmus|P2", "taxon": {"abbrev": "mmus", "name": "Mus musculus"}, "length": 415, "description": "kinase alpha homolog",
             "ecNumbers": ["1.1.1.1"], "pfamDomains": {"PF00069": [12, 198, 186], "PF00001": [250, 300, 50]}},
      "g3": {"accession": "atha|P3", "taxon": {"abbrev": "atha", "name": "Arabidopsis thaliana"}, "length": 380, "description": "putative receptor",
             "ecNumbers": ["1.1.1.1"], "pfamDomains": {"PF00001": [40, 90, 50]}},
      "g4": {"accession": "ecol|P4", "taxon": {"abbrev": "ecol", "name": "Escherichia coli"}, "length": 120, "description": "hypothetical protein",
             "ecNumbers": [], "pfamDomains": {}}
    },
    "ecNumbers": {
      "1.1.1.1": {"code": "1.1.1.1", "description": "alcohol dehydrogenase", "color": "#ff0000", "count": 3, "index": 0},
      "2.7.11.1": {"code": "2.7.11.1", "description": "protein kinase", "color": "#00ff00", "count": 1, "index": 1}
    },
    "pfamDomains": {
      "PF00001": {"accession": "PF00001", "symbol": "7tm_1", "description": "7 transmembrane receptor", "color": "#0000ff", "count": 2, "index": 1},
      "PF00069": {"accession": "PF00069", "symbol": "Pkinase", "description": "Protein kinase domain", "color": "#ffff00", "count": 2, "index": 0}
    }
  },
  "nodes": {
    "g1": {"id": "g1", "x": 0, "y": 0},
    "g2": {"id": "g2", "x": "100", "y": "50"},
    "g3": {"id": "g3", "x": 50, "y": 100.5},
    "g4": {"id": "g4", "x": 200, "y": 200}
  },
  "edges": {
    "e1": {"queryId": "g1", "subjectId": "g2", "T": "O", "E": "1e-50", "score": 310.5},
    "e2": {"queryId": "g1", "subjectId": "g3", "T": "C", "E": "1e-20", "score": 120},
    "e3": {"queryId": "g2", "subjectId": "g3", "T": "P", "E": "1e-5", "score": 40},
    "e4": {"queryId": "g4", "subjectId": "g3", "T": "N", "E": "0.01", "score": 12}
  },
  "minEvalueExp": -50,
  "maxEvalueExp": -2,
  "size": 4,
  "taxonCounts": {"hsap": 1, "mmus": 1, "atha": 1, "ecol": 1, "scer": 0}
}`
