package validators

import "go.mongodb.org/mongo-driver/bson"

var CancellationPolicyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"type",
			"active",
			"applies_from",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"applies_from": bson.M{
				"bsonType": "date",
			},

			"applies_to": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
