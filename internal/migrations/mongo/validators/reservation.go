package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_id",
			"guests",
			"date_start",
			"date_end",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guests": bson.M{
				"bsonType": "object",
				"required": []string{"adults"},
				"properties": bson.M{
					"adults": bson.M{
						"bsonType": "int",
						"minimum":  1,
						"maximum":  50,
					},
					"children": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  50,
					},
					"infants": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  50,
					},
				},
			},

			"date_start": bson.M{
				"bsonType": "date",
			},

			"date_end": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
				},
			},

			"total_value": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
