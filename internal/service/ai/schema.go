package ai

import "google.golang.org/genai"

func timelineSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"timestamp":   {Type: genai.TypeString},
				"title":       {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"importance":  {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
				"linkedImage": {Type: genai.TypeString, Description: "File name of the related whiteboard image, if any"},
			},
			Required: []string{"timestamp", "title", "description", "importance"},
		},
	}
}

func insightSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"topic":              {Type: genai.TypeString},
				"summary":            {Type: genai.TypeString},
				"examProbability":    {Type: genai.TypeNumber, Description: "Percentage probability 0-100"},
				"relatedSearchQuery": {Type: genai.TypeString},
			},
			Required: []string{"topic", "summary", "examProbability"},
		},
	}
}
