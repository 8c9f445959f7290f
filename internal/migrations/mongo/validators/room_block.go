package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomBlockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_id",
			"date_start",
			"date_end",
			"type",
			"recurrence",
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

			"date_start": bson.M{
				"bsonType": "date",
			},

			"date_end": bson.M{
				"bsonType": "date",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"maintenance",
					"cleaning",
					"private",
					"custom",
				},
			},

			"recurrence": bson.M{
				"bsonType": "string",
				"enum": []string{
					"none",
					"daily",
					"weekly",
					"monthly",
				},
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
